package handlers

import (
	"net/http"

	"homeservice/models"
	"homeservice/services/booking"
	"homeservice/services/coupon"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	Coupons  coupon.CouponService
	Bookings booking.BookingService
}

func NewCouponHandler(coupons coupon.CouponService, bookings booking.BookingService) *CouponHandler {
	return &CouponHandler{Coupons: coupons, Bookings: bookings}
}

func (h *CouponHandler) AvailableHandler(c *gin.Context) {
	list, err := h.Coupons.ListAvailable(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, list)
}

// ApplyHandler validates a code against a fresh quote for the service and quantity.
func (h *CouponHandler) ApplyHandler(c *gin.Context) {
	var req models.ApplyCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.Bookings.Quote(c.Request.Context(), models.QuoteRequest{
		ServiceID:  req.ServiceID,
		Quantity:   req.Quantity,
		CouponCode: req.Code,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, quote)
}

func (h *CouponHandler) CreateHandler(c *gin.Context) {
	var req models.CreateCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.Coupons.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, created)
}

func (h *CouponHandler) ListHandler(c *gin.Context) {
	list, err := h.Coupons.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, list)
}
