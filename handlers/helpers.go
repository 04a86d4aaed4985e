package handlers

import (
	"homeservice/models"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into dest and writes a 400 naming the first bad field on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		utils.RespondError(c, utils.ValidationFromError(err))
		return false
	}
	return true
}

// filterByStatus keeps the bookings matching the optional ?status= query.
// An unknown status writes a 400 and returns false.
func filterByStatus(c *gin.Context, list []models.Booking) ([]models.Booking, bool) {
	raw := c.Query("status")
	if raw == "" {
		return list, true
	}
	status, err := models.ParseBookingStatus(raw)
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("status", "Unknown booking status"))
		return nil, false
	}
	filtered := make([]models.Booking, 0, len(list))
	for _, b := range list {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered, true
}
