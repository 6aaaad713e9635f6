package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

// DashboardHandlers serves the admin dashboard aggregates.
type DashboardHandlers struct {
	dashboard   *services.DashboardService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDashboardHandlers creates dashboard endpoint handlers.
func NewDashboardHandlers(dashboard *services.DashboardService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DashboardHandlers {
	return &DashboardHandlers{
		dashboard:   dashboard,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetStats handles GET /api/v1/admin/dashboard
func (h *DashboardHandlers) GetStats(c *gin.Context) {
	marker := h.perfTracker.StartOperation("dashboard_request")
	defer h.perfTracker.CompleteOperation(marker)

	stats, err := h.dashboard.Stats()
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard stats"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, stats)
}

// GetMetrics handles GET /api/v1/admin/metrics — recent operation
// timings from the in-process performance tracker.
func (h *DashboardHandlers) GetMetrics(c *gin.Context) {
	window := 15 * time.Minute
	c.JSON(http.StatusOK, gin.H{
		"recent":      h.perfTracker.GetRecentMetrics(window),
		"successRate": h.perfTracker.SuccessRate(window),
	})
}
