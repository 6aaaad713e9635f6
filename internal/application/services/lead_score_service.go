package services

import (
	"fmt"
	"time"

	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

// LeadScoreService recomputes a visitor's lead score from their full
// page-view and event history.
type LeadScoreService struct {
	visitorRepo visitor.Repository
	sessionRepo visitor.SessionRepository
	eventRepo   visitor.EventRepository
	weights     visitor.ScoreWeights
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	nowFn       func() time.Time
}

// NewLeadScoreService creates a new lead score service.
func NewLeadScoreService(
	visitorRepo visitor.Repository,
	sessionRepo visitor.SessionRepository,
	eventRepo visitor.EventRepository,
	weights visitor.ScoreWeights,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *LeadScoreService {
	return &LeadScoreService{
		visitorRepo: visitorRepo,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		weights:     weights,
		logger:      logger,
		perfTracker: perfTracker,
		nowFn:       time.Now,
	}
}

// Recompute rebuilds the score from scratch and stores it. When either
// history read fails the stored score is left untouched; a partial
// history would produce a score that later recomputations contradict.
func (s *LeadScoreService) Recompute(visitorID string) (int, error) {
	marker := s.perfTracker.StartOperation("recompute_lead_score")
	defer s.perfTracker.CompleteOperation(marker)

	sessions, err := s.sessionRepo.FindByVisitorID(visitorID)
	if err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to load page views for scoring: %w", err)
	}

	events, err := s.eventRepo.FindByVisitorID(visitorID)
	if err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to load events for scoring: %w", err)
	}

	score := visitor.ComputeLeadScore(sessions, events, s.weights)

	if err := s.visitorRepo.UpdateLeadScore(visitorID, score, s.nowFn().UTC()); err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to store lead score: %w", err)
	}

	s.logger.WithVisitor(logging.ChannelAnalytics, visitorID).Debug("Lead score recomputed",
		"score", score,
		"pageViews", len(sessions),
		"events", len(events))
	marker.AddMetadata("score", score)
	marker.SetSuccess(true)
	return score, nil
}
