package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
	"github.com/iknowag/engage-go/internal/presentation/http/middleware"
)

// CaptureHandlers handles public email signups and the admin signup list.
type CaptureHandlers struct {
	captures    *services.EmailCaptureService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCaptureHandlers creates email capture endpoint handlers.
func NewCaptureHandlers(captures *services.EmailCaptureService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CaptureHandlers {
	return &CaptureHandlers{
		captures:    captures,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

type captureRequest struct {
	Email  string `json:"email" binding:"required"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// PostCapture handles POST /api/v1/captures (public form)
func (h *CaptureHandlers) PostCapture(c *gin.Context) {
	marker := h.perfTracker.StartOperation("capture_email")
	defer h.perfTracker.CompleteOperation(marker)

	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	capture, err := h.captures.Capture(req.Email, req.Name, req.Source, middleware.GetVisitorID(c))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to capture email", "details": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, capture)
}

// GetCaptures handles GET /api/v1/admin/captures
func (h *CaptureHandlers) GetCaptures(c *gin.Context) {
	captures, err := h.captures.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list email captures"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"captures": captures, "count": len(captures)})
}
