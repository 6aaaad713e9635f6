package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
	"github.com/iknowag/engage-go/internal/presentation/http/middleware"
)

// ApplicationHandlers handles partnership application intake and review.
type ApplicationHandlers struct {
	applications *services.ApplicationService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewApplicationHandlers creates application endpoint handlers.
func NewApplicationHandlers(applications *services.ApplicationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ApplicationHandlers {
	return &ApplicationHandlers{
		applications: applications,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

type applicationRequest struct {
	CompanyName     string   `json:"companyName" binding:"required"`
	MediaType       string   `json:"mediaType"`
	ContactName     string   `json:"contactName"`
	ContactTitle    string   `json:"contactTitle"`
	ContactEmail    string   `json:"contactEmail" binding:"required,email"`
	ContactPhone    string   `json:"contactPhone"`
	Location        string   `json:"location"`
	CompanySize     string   `json:"companySize"`
	PartnershipType string   `json:"partnershipType"`
	Challenge       string   `json:"challenge"`
	Competitors     string   `json:"competitors"`
	Timeline        string   `json:"timeline"`
	InterestedTools []string `json:"interestedTools"`
	Comments        string   `json:"comments"`
}

// PostApplication handles POST /api/v1/applications (public form)
func (h *ApplicationHandlers) PostApplication(c *gin.Context) {
	marker := h.perfTracker.StartOperation("submit_application")
	defer h.perfTracker.CompleteOperation(marker)

	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	app, err := h.applications.Submit(&domain.Application{
		CompanyName:     req.CompanyName,
		MediaType:       req.MediaType,
		ContactName:     req.ContactName,
		ContactTitle:    req.ContactTitle,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Location:        req.Location,
		CompanySize:     req.CompanySize,
		PartnershipType: req.PartnershipType,
		Challenge:       req.Challenge,
		Competitors:     req.Competitors,
		Timeline:        req.Timeline,
		InterestedTools: req.InterestedTools,
		Comments:        req.Comments,
	}, middleware.GetVisitorID(c))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, app)
}

// GetApplications handles GET /api/v1/admin/applications
func (h *ApplicationHandlers) GetApplications(c *gin.Context) {
	apps, err := h.applications.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list applications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "count": len(apps)})
}

// GetApplication handles GET /api/v1/admin/applications/:id
func (h *ApplicationHandlers) GetApplication(c *gin.Context) {
	app, err := h.applications.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load application"})
		return
	}
	if app == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	c.JSON(http.StatusOK, app)
}

type reviewRequest struct {
	Status string `json:"status" binding:"required"`
}

// PutApplicationStatus handles PUT /api/v1/admin/applications/:id/status
func (h *ApplicationHandlers) PutApplicationStatus(c *gin.Context) {
	marker := h.perfTracker.StartOperation("review_application")
	defer h.perfTracker.CompleteOperation(marker)

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	reviewedBy := c.GetString("adminEmail")
	if err := h.applications.Review(c.Param("id"), req.Status, reviewedBy); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to review application", "details": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
