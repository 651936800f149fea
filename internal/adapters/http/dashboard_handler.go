package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gardenlog/core/internal/application/services"
	"github.com/gardenlog/core/internal/infrastructure/logger"
)

// DashboardHandler handles the dashboard stats request
type DashboardHandler struct {
	dashboardService *services.DashboardService
	logger           *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Stats handles the dashboard aggregate. Query parameters are ignored;
// the aggregate is computed fresh on every call.
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.dashboardService.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("Dashboard stats failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, newDashboardResponse(stats))
}
