package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"inventario/internal/domain/dashboard"
)

// SummaryProvider computes the dashboard summary. It never fails; broken
// metrics are zeroed and listed in Summary.Degraded.
type SummaryProvider interface {
	Summary(ctx context.Context) *dashboard.Summary
}

// DashboardHandler serves the dashboard.
type DashboardHandler struct {
	*BaseHandler
	service SummaryProvider
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, service SummaryProvider) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// Summary handles GET /dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	h.OK(c, h.service.Summary(c.Request.Context()))
}
