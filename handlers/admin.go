package handlers

import (
	"net/http"

	"decorbook/services/admin"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the read-only dashboard reports.
type AdminHandler struct {
	Service admin.AdminService
	Logger  *zap.Logger
	Debug   bool
}

func NewAdminHandler(svc admin.AdminService, logger *zap.Logger, debug bool) *AdminHandler {
	return &AdminHandler{Service: svc, Logger: logger, Debug: debug}
}

// DashboardStats handles GET /api/admin/dashboard/stats.
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	stats, err := h.Service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to fetch dashboard stats", h.Debug)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RevenueChart handles GET /api/admin/dashboard/revenue-chart?year=YYYY.
func (h *AdminHandler) RevenueChart(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	months, err := h.Service.RevenueChart(c.Request.Context(), c.Query("year"))
	if err != nil {
		respondError(c, logger, err, "Failed to fetch revenue data", h.Debug)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenueData": months})
}

// PackageStats handles GET /api/admin/dashboard/package-stats.
func (h *AdminHandler) PackageStats(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	stats, err := h.Service.PackageStats(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to fetch package stats", h.Debug)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packageStats": stats})
}
