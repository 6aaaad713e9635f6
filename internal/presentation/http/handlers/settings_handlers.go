package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

// SettingsHandlers serves the admin settings and content editor screens.
type SettingsHandlers struct {
	settings    *services.SettingsService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSettingsHandlers creates settings endpoint handlers.
func NewSettingsHandlers(settings *services.SettingsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SettingsHandlers {
	return &SettingsHandlers{
		settings:    settings,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetSettings handles GET /api/v1/admin/settings/:scope
func (h *SettingsHandlers) GetSettings(c *gin.Context) {
	values, err := h.settings.Get(c.Param("scope"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to load settings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": values})
}

// PutSettings handles PUT /api/v1/admin/settings/:scope
func (h *SettingsHandlers) PutSettings(c *gin.Context) {
	marker := h.perfTracker.StartOperation("save_settings")
	defer h.perfTracker.CompleteOperation(marker)

	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.settings.Save(c.Param("scope"), values); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to save settings", "details": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"saved": len(values)})
}

// GetContent handles GET /api/v1/content — the public content blocks,
// readable without authentication so the site can render them.
func (h *SettingsHandlers) GetContent(c *gin.Context) {
	values, err := h.settings.Get("content")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load content"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": values})
}
