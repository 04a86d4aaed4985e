package handlers

import (
	"net/http"

	"homeservice/middleware"
	"homeservice/models"
	"homeservice/services/booking"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Bookings booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: svc}
}

// SlotsHandler handles GET /api/bookings/slots?date=YYYY-MM-DD.
func (h *BookingHandler) SlotsHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.RespondError(c, utils.NewValidationError("date", "date is required"))
		return
	}
	slots, err := h.Bookings.Slots(c.Request.Context(), date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (h *BookingHandler) QuoteHandler(c *gin.Context) {
	var req models.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.Bookings.Quote(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, quote)
}

// CreateHandler handles POST /api/bookings.
func (h *BookingHandler) CreateHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, b)
}

// ListMineHandler handles GET /api/bookings, optionally filtered by ?status=.
func (h *BookingHandler) ListMineHandler(c *gin.Context) {
	list, err := h.Bookings.ListMine(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	list, ok := filterByStatus(c, list)
	if !ok {
		return
	}
	utils.RespondOK(c, http.StatusOK, list)
}

// ProviderBookingsHandler handles GET /api/providers/:providerId/bookings.
func (h *BookingHandler) ProviderBookingsHandler(c *gin.Context) {
	list, err := h.Bookings.ListForProvider(c.Request.Context(), middleware.Identity(c), c.Param("providerId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	list, ok := filterByStatus(c, list)
	if !ok {
		return
	}
	utils.RespondOK(c, http.StatusOK, list)
}

func (h *BookingHandler) GetHandler(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

// CancelHandler accepts an optional {"reason": "..."} body.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"max=200"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

func (h *BookingHandler) CompleteHandler(c *gin.Context) {
	b, err := h.Bookings.Complete(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

// AssignProviderHandler handles PUT /api/admin/bookings/:id/provider.
func (h *BookingHandler) AssignProviderHandler(c *gin.Context) {
	var req struct {
		ProviderID string `json:"providerId" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.AssignProvider(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.ProviderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}
