package handlers

import (
	"net/http"
	"time"

	"decorbook/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Monitor *utils.HealthMonitor
	// MaxAge is how old a background check may be before /health checks again.
	MaxAge time.Duration
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Monitor.Status()
	if status.CheckedAt.IsZero() || time.Since(status.CheckedAt) > h.MaxAge {
		status = h.Monitor.Check(c.Request.Context())
	}

	code := http.StatusOK
	label := "ok"
	if !status.Healthy {
		code = http.StatusServiceUnavailable
		label = "degraded"
	}
	c.JSON(code, gin.H{
		"status":    label,
		"checks":    status.Checks,
		"checkedAt": status.CheckedAt,
	})
}
