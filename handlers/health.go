package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler checks the health status of the service
// @Summary      Health check
// @Description  Report whether the frontend and its schema registry are up
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string  "Service health status"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	status := gin.H{
		"status": "healthy",
		"db":     "connected",
	}

	if _, err := h.db.Identifiers(); err != nil {
		status["db"] = "unavailable"
	}

	c.JSON(http.StatusOK, status)
}
