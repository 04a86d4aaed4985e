package handlers

import (
	"net/http"

	"homeservice/middleware"
	"homeservice/models"
	"homeservice/services/feedback"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	Feedback feedback.FeedbackService
}

func NewFeedbackHandler(svc feedback.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{Feedback: svc}
}

// SubmitHandler handles POST /api/feedback.
func (h *FeedbackHandler) SubmitHandler(c *gin.Context) {
	var req models.SubmitFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.Feedback.Submit(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, f)
}

func (h *FeedbackHandler) UpdateHandler(c *gin.Context) {
	var req models.UpdateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.Feedback.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, f)
}

func (h *FeedbackHandler) GetByBookingHandler(c *gin.Context) {
	f, err := h.Feedback.GetByBooking(c.Request.Context(), middleware.Identity(c), c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, f)
}

func (h *FeedbackHandler) ProviderSummaryHandler(c *gin.Context) {
	summary, err := h.Feedback.ProviderSummary(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, summary)
}
