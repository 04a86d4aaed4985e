package handlers

import (
	"io"
	"net/http"

	"homeservice/middleware"
	"homeservice/models"
	"homeservice/services/payment"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds what Stripe may send.
const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	Payments payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: svc}
}

// CreateOrderHandler handles POST /api/payments/:bookingId/order.
func (h *PaymentHandler) CreateOrderHandler(c *gin.Context) {
	order, err := h.Payments.InitiateOnline(c.Request.Context(), middleware.Identity(c), c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, order)
}

func (h *PaymentHandler) VerifyHandler(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Payments.VerifyOnline(c.Request.Context(), middleware.Identity(c), c.Param("bookingId"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

func (h *PaymentHandler) CashHandler(c *gin.Context) {
	b, err := h.Payments.ConfirmCash(c.Request.Context(), middleware.Identity(c), c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

// StripeWebhookHandler needs the raw body for signature verification.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("", "Could not read webhook body"))
		return
	}
	if err := h.Payments.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"received": true})
}
