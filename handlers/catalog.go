package handlers

import (
	"net/http"

	"homeservice/middleware"
	"homeservice/models"
	"homeservice/services/catalog"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Catalog catalog.CatalogService
}

func NewCatalogHandler(svc catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: svc}
}

// ListServicesHandler handles GET /api/services?category=&search=&minPrice=&maxPrice=&sort=.
func (h *CatalogHandler) ListServicesHandler(c *gin.Context) {
	var q models.ServiceQuery
	err := c.ShouldBindQuery(&q)
	if err != nil {
		utils.RespondError(c, utils.ValidationFromError(err))
		return
	}
	if q.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if q.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		utils.RespondError(c, err)
		return
	}

	services, err := h.Catalog.List(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, services)
}

// GetServiceHandler is public; the optional identity only matters for admins.
func (h *CatalogHandler) GetServiceHandler(c *gin.Context) {
	svc, err := h.Catalog.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, svc)
}

func (h *CatalogHandler) CreateServiceHandler(c *gin.Context) {
	var input models.ServiceInput
	if !bindJSON(c, &input) {
		return
	}
	svc, err := h.Catalog.Create(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, svc)
}

func (h *CatalogHandler) UpdateServiceHandler(c *gin.Context) {
	var input models.ServiceInput
	if !bindJSON(c, &input) {
		return
	}
	svc, err := h.Catalog.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, svc)
}

// SetActiveHandler handles PATCH /api/admin/services/:id/active with {"isActive": bool}.
func (h *CatalogHandler) SetActiveHandler(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.Catalog.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, svc)
}

func priceParam(c *gin.Context, name string) (*models.Money, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	m, err := models.MoneyFromString(raw)
	if err != nil {
		return nil, utils.NewValidationError(name, name+" must be a number")
	}
	return &m, nil
}
