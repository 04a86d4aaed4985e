package handlers

import (
	"net/http"

	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

// Check reports the last dependency check; 503 when any dependency is down.
func (h *HealthHandler) Check(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"success": status.Healthy(), "data": status})
}
