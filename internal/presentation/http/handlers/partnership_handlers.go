package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

// PartnershipHandlers serves the admin partnerships screen.
type PartnershipHandlers struct {
	partnerships *services.PartnershipService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewPartnershipHandlers creates partnership endpoint handlers.
func NewPartnershipHandlers(partnerships *services.PartnershipService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PartnershipHandlers {
	return &PartnershipHandlers{
		partnerships: partnerships,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

type partnershipRequest struct {
	CompanyName  string     `json:"companyName" binding:"required"`
	ContactName  string     `json:"contactName"`
	ContactEmail string     `json:"contactEmail"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"startedAt"`
}

// PostPartnership handles POST /api/v1/admin/partnerships
func (h *PartnershipHandlers) PostPartnership(c *gin.Context) {
	marker := h.perfTracker.StartOperation("create_partnership")
	defer h.perfTracker.CompleteOperation(marker)

	var req partnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	p := &domain.Partnership{
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Status:       req.Status,
	}
	if req.StartedAt != nil {
		p.StartedAt = *req.StartedAt
	}

	created, err := h.partnerships.Create(p)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create partnership"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, created)
}

// GetPartnerships handles GET /api/v1/admin/partnerships
func (h *PartnershipHandlers) GetPartnerships(c *gin.Context) {
	partnerships, err := h.partnerships.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list partnerships"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partnerships": partnerships, "count": len(partnerships)})
}
