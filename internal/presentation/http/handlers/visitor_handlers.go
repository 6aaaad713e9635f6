package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

// VisitorHandlers serves the admin visitor manager.
type VisitorHandlers struct {
	analytics   *services.VisitorAnalyticsService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewVisitorHandlers creates visitor manager handlers.
func NewVisitorHandlers(analytics *services.VisitorAnalyticsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *VisitorHandlers {
	return &VisitorHandlers{
		analytics:   analytics,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetVisitors handles GET /api/v1/admin/visitors
func (h *VisitorHandlers) GetVisitors(c *gin.Context) {
	marker := h.perfTracker.StartOperation("list_visitors")
	defer h.perfTracker.CompleteOperation(marker)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	visitors, err := h.analytics.ListVisitors(limit, offset)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list visitors"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"visitors": visitors, "count": len(visitors)})
}

// GetVisitor handles GET /api/v1/admin/visitors/:id
func (h *VisitorHandlers) GetVisitor(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_visitor")
	defer h.perfTracker.CompleteOperation(marker)

	detail, err := h.analytics.GetVisitorDetail(c.Param("id"))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitor"})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Visitor not found"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, detail)
}

// PostRescore handles POST /api/v1/admin/visitors/:id/rescore
func (h *VisitorHandlers) PostRescore(c *gin.Context) {
	marker := h.perfTracker.StartOperation("rescore_visitor")
	defer h.perfTracker.CompleteOperation(marker)

	score, err := h.analytics.RescoreVisitor(c.Param("id"))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rescore visitor", "details": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"leadScore": score})
}

// GetFunnel handles GET /api/v1/admin/visitors/funnel
func (h *VisitorHandlers) GetFunnel(c *gin.Context) {
	funnel, err := h.analytics.DesignationFunnel()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load designation funnel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"funnel": funnel})
}

// GetTopPages handles GET /api/v1/admin/visitors/top-pages
func (h *VisitorHandlers) GetTopPages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	pages, err := h.analytics.TopPages(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load top pages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topPages": pages})
}
