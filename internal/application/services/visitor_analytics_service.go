package services

import (
	"fmt"

	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

// VisitorDetail is one visitor with their full activity history.
type VisitorDetail struct {
	Visitor   *visitor.Visitor    `json:"visitor"`
	PageViews []*visitor.PageView `json:"pageViews"`
	Events    []*visitor.Event    `json:"events"`
}

// VisitorAnalyticsService serves the admin visitor manager screens.
type VisitorAnalyticsService struct {
	visitorRepo visitor.Repository
	sessionRepo visitor.SessionRepository
	eventRepo   visitor.EventRepository
	scorer      *LeadScoreService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewVisitorAnalyticsService creates a new visitor analytics service.
func NewVisitorAnalyticsService(
	visitorRepo visitor.Repository,
	sessionRepo visitor.SessionRepository,
	eventRepo visitor.EventRepository,
	scorer *LeadScoreService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *VisitorAnalyticsService {
	return &VisitorAnalyticsService{
		visitorRepo: visitorRepo,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		scorer:      scorer,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ListVisitors returns a page of visitors ordered by most recent activity.
func (s *VisitorAnalyticsService) ListVisitors(limit, offset int) ([]*visitor.Visitor, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.visitorRepo.FindAll(limit, offset)
}

// GetVisitorDetail returns one visitor with their complete history,
// or nil when the visitor does not exist.
func (s *VisitorAnalyticsService) GetVisitorDetail(visitorID string) (*VisitorDetail, error) {
	marker := s.perfTracker.StartOperation("visitor_detail")
	defer s.perfTracker.CompleteOperation(marker)

	v, err := s.visitorRepo.FindByID(visitorID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load visitor: %w", err)
	}
	if v == nil {
		marker.SetSuccess(true)
		return nil, nil
	}

	pageViews, err := s.sessionRepo.FindByVisitorID(visitorID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load visitor page views: %w", err)
	}
	events, err := s.eventRepo.FindByVisitorID(visitorID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load visitor events: %w", err)
	}

	marker.SetSuccess(true)
	return &VisitorDetail{
		Visitor:   v,
		PageViews: pageViews,
		Events:    events,
	}, nil
}

// RescoreVisitor forces a lead score recomputation from the admin screen.
func (s *VisitorAnalyticsService) RescoreVisitor(visitorID string) (int, error) {
	v, err := s.visitorRepo.FindByID(visitorID)
	if err != nil {
		return 0, fmt.Errorf("failed to load visitor for rescore: %w", err)
	}
	if v == nil {
		return 0, fmt.Errorf("visitor not found: %s", visitorID)
	}

	score, err := s.scorer.Recompute(visitorID)
	if err != nil {
		return 0, err
	}

	s.logger.WithVisitor(logging.ChannelAdmin, visitorID).Info("Visitor rescored", "score", score)
	return score, nil
}

// DesignationFunnel returns visitor counts per identification tier.
func (s *VisitorAnalyticsService) DesignationFunnel() (map[visitor.Designation]int, error) {
	return s.visitorRepo.CountByDesignation()
}

// TopPages returns the most viewed page paths with their view counts.
func (s *VisitorAnalyticsService) TopPages(limit int) (map[string]int, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.sessionRepo.TopPaths(limit)
}
