package services

import (
	"fmt"
	"time"

	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/messaging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

// activeWindow is how far back a visitor's last activity may be for
// the live board to count them as active.
const activeWindow = 30 * time.Minute

// boardSampleSize bounds how many recent visitors feed the live board
// aggregates.
const boardSampleSize = 500

// DashboardStats is the aggregate block at the top of the admin dashboard.
type DashboardStats struct {
	TotalVisitors      int                         `json:"totalVisitors"`
	Designations       map[visitor.Designation]int `json:"designations"`
	ApplicationsByStat map[string]int              `json:"applicationsByStatus"`
	PartnershipCount   int                         `json:"partnershipCount"`
	CaptureCount       int                         `json:"captureCount"`
	Sources            map[string]int              `json:"sources"`
	TopPages           map[string]int              `json:"topPages"`
}

// DashboardService aggregates cross-domain counts for the admin
// dashboard and the websocket live board.
type DashboardService struct {
	visitorRepo  visitor.Repository
	analytics    *VisitorAnalyticsService
	applications *ApplicationService
	partnerships *PartnershipService
	captures     *EmailCaptureService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	nowFn        func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	visitorRepo visitor.Repository,
	analytics *VisitorAnalyticsService,
	applications *ApplicationService,
	partnerships *PartnershipService,
	captures *EmailCaptureService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *DashboardService {
	return &DashboardService{
		visitorRepo:  visitorRepo,
		analytics:    analytics,
		applications: applications,
		partnerships: partnerships,
		captures:     captures,
		logger:       logger,
		perfTracker:  perfTracker,
		nowFn:        time.Now,
	}
}

// Stats builds the dashboard aggregate block.
func (s *DashboardService) Stats() (*DashboardStats, error) {
	marker := s.perfTracker.StartOperation("dashboard_stats")
	defer s.perfTracker.CompleteOperation(marker)

	designations, err := s.visitorRepo.CountByDesignation()
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	total := 0
	for _, count := range designations {
		total += count
	}

	appCounts, err := s.applications.CountByStatus()
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	partnershipCount, err := s.partnerships.Count()
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to count partnerships: %w", err)
	}

	captureCount, err := s.captures.Count()
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to count email captures: %w", err)
	}

	sources, err := s.visitorRepo.CountBySource()
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to count visitors by source: %w", err)
	}

	topPages, err := s.analytics.TopPages(10)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load top pages: %w", err)
	}

	marker.SetSuccess(true)
	return &DashboardStats{
		TotalVisitors:      total,
		Designations:       designations,
		ApplicationsByStat: appCounts,
		PartnershipCount:   partnershipCount,
		CaptureCount:       captureCount,
		Sources:            sources,
		TopPages:           topPages,
	}, nil
}

// BoardSnapshot builds the aggregate pushed to websocket board clients
// on each tick.
func (s *DashboardService) BoardSnapshot() (*messaging.BoardSnapshot, error) {
	designations, err := s.visitorRepo.CountByDesignation()
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors for board: %w", err)
	}

	total := 0
	byName := make(map[string]int, len(designations))
	for designation, count := range designations {
		total += count
		byName[string(designation)] = count
	}

	recent, err := s.visitorRepo.FindAll(boardSampleSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to sample visitors for board: %w", err)
	}

	now := s.nowFn().UTC()
	active := 0
	scoreSum := 0
	for _, v := range recent {
		if now.Sub(v.LastActivity) <= activeWindow {
			active++
		}
		scoreSum += v.LeadScore
	}

	var average float64
	if len(recent) > 0 {
		average = float64(scoreSum) / float64(len(recent))
	}

	return &messaging.BoardSnapshot{
		TotalVisitors:    total,
		Designations:     byName,
		ActiveCount:      active,
		AverageLeadScore: average,
		GeneratedAt:      now,
	}, nil
}
