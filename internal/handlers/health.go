package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/pabean-labs/bc20-explorer/api/v1"
	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
)

// GetHealth reports liveness and whether the datastore answers.
// (GET /health)
func (h *Handler) GetHealth(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		middlewares.RequestLogger(c).Named("handler").Warnw("database ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, v1.HealthStatus{Status: "unavailable", Database: err.Error()})
		return
	}
	c.JSON(http.StatusOK, v1.HealthStatus{Status: "ok", Database: "ok"})
}
