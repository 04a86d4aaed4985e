package handlers

import (
	"net/http"

	"homeservice/middleware"
	"homeservice/models"
	"homeservice/services/user"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	UserService user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{UserService: svc}
}

// RegisterHandler handles POST /api/users/register.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.UserService.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, resp)
}

// LoginHandler handles POST /api/users/login.
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.UserService.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, resp)
}

func (h *UserHandler) ProfileHandler(c *gin.Context) {
	u, err := h.UserService.Profile(c.Request.Context(), middleware.Identity(c).UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, u)
}

// SaveAddressHandler handles PUT /api/users/address.
func (h *UserHandler) SaveAddressHandler(c *gin.Context) {
	var addr models.Address
	if !bindJSON(c, &addr) {
		return
	}
	u, err := h.UserService.SaveAddress(c.Request.Context(), middleware.Identity(c).UserID, addr)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, u)
}

func (h *UserHandler) SaveFCMTokenHandler(c *gin.Context) {
	var req models.FCMTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.UserService.SaveFCMToken(c.Request.Context(), middleware.Identity(c).UserID, req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"message": "Device token saved"})
}
