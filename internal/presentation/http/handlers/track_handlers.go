// Package handlers provides the HTTP handlers for the presentation layer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
	"github.com/iknowag/engage-go/internal/presentation/http/middleware"
)

// TrackHandlers handles the public tracking endpoints. Every endpoint
// queues the write and answers 202 immediately so tracking never slows
// a page load.
type TrackHandlers struct {
	tracking    *services.TrackingService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewTrackHandlers creates tracking endpoint handlers.
func NewTrackHandlers(tracking *services.TrackingService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TrackHandlers {
	return &TrackHandlers{
		tracking:    tracking,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

type pageViewRequest struct {
	SessionID string `json:"sessionId"`
	PagePath  string `json:"pagePath" binding:"required"`
	PageTitle string `json:"pageTitle"`
	Referrer  string `json:"referrer"`
	Source    string `json:"source"`
}

// PostPageView handles POST /api/v1/track/pageview
func (h *TrackHandlers) PostPageView(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_page_view")
	defer h.perfTracker.CompleteOperation(marker)

	var req pageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	visitorID := middleware.GetVisitorID(c)
	queued := h.tracking.TrackPageView(services.PageViewInput{
		VisitorID: visitorID,
		SessionID: req.SessionID,
		PagePath:  req.PagePath,
		PageTitle: req.PageTitle,
		Referrer:  req.Referrer,
		UserAgent: c.Request.UserAgent(),
		Source:    req.Source,
	})
	if !queued {
		h.logger.Tracking().Warn("Page view dropped, queue full", "pagePath", req.PagePath)
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusAccepted, gin.H{"visitorId": visitorID})
}

type eventRequest struct {
	SessionID string         `json:"sessionId"`
	EventType string         `json:"eventType" binding:"required"`
	Detail    map[string]any `json:"detail"`
}

// PostEvent handles POST /api/v1/track/event
func (h *TrackHandlers) PostEvent(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_event")
	defer h.perfTracker.CompleteOperation(marker)

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	visitorID := middleware.GetVisitorID(c)
	input := services.EventInput{
		VisitorID: visitorID,
		SessionID: req.SessionID,
		UserAgent: c.Request.UserAgent(),
		Detail:    req.Detail,
	}

	var queued bool
	switch req.EventType {
	case "external_click":
		queued = h.tracking.TrackExternalClick(input)
	case "form_submission":
		queued = h.tracking.TrackFormSubmission(input)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type", "eventType": req.EventType})
		return
	}
	if !queued {
		h.logger.Tracking().Warn("Event dropped, queue full", "eventType", req.EventType)
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusAccepted, gin.H{"visitorId": visitorID})
}

type signupRequest struct {
	Email  string `json:"email" binding:"required"`
	Name   string `json:"name"`
	Source string `json:"source"`
	Plan   string `json:"plan"`
}

// PostSignup handles POST /api/v1/track/signup
func (h *TrackHandlers) PostSignup(c *gin.Context) {
	h.identify(c, "post_signup", h.tracking.TrackEmailSignup)
}

// PostRegistration handles POST /api/v1/track/registration
func (h *TrackHandlers) PostRegistration(c *gin.Context) {
	h.identify(c, "post_registration", h.tracking.TrackRegistration)
}

// PostSubscription handles POST /api/v1/track/subscription
func (h *TrackHandlers) PostSubscription(c *gin.Context) {
	h.identify(c, "post_subscription", h.tracking.TrackSubscription)
}

func (h *TrackHandlers) identify(c *gin.Context, operation string, track func(services.SignupInput) bool) {
	marker := h.perfTracker.StartOperation(operation)
	defer h.perfTracker.CompleteOperation(marker)

	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	visitorID := middleware.GetVisitorID(c)
	queued := track(services.SignupInput{
		VisitorID: visitorID,
		Email:     req.Email,
		Name:      req.Name,
		Source:    req.Source,
		UserAgent: c.Request.UserAgent(),
		Plan:      req.Plan,
	})
	if !queued {
		h.logger.Tracking().Warn("Identification dropped, queue full", "operation", operation)
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusAccepted, gin.H{"visitorId": visitorID})
}
