package services

import (
	"sort"
	"time"

	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/messaging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/security"
	"github.com/iknowag/engage-go/internal/infrastructure/tasks"
)

// PageViewInput is a page view reported by the frontend.
type PageViewInput struct {
	VisitorID string
	SessionID string
	PagePath  string
	PageTitle string
	Referrer  string
	UserAgent string
	Source    string
}

// EventInput is an interaction event reported by the frontend. For
// form submissions Detail carries field names only, never values.
type EventInput struct {
	VisitorID string
	SessionID string
	UserAgent string
	Detail    map[string]any
}

// SignupInput is an identification action reported by the frontend.
type SignupInput struct {
	VisitorID string
	Email     string
	Name      string
	Source    string
	UserAgent string
	Plan      string
}

// TrackingService records visitor activity. Every call enqueues the
// write onto the background dispatcher keyed by visitor ID and returns
// immediately: recording never blocks or fails a page load, and writes
// for one visitor apply in submission order.
type TrackingService struct {
	identity    *IdentityService
	scorer      *LeadScoreService
	sessionRepo visitor.SessionRepository
	eventRepo   visitor.EventRepository
	visitorRepo visitor.Repository
	dispatcher  *tasks.Dispatcher
	activity    *messaging.ActivityBroadcaster
	logger      *logging.ChanneledLogger
	nowFn       func() time.Time
}

// NewTrackingService creates a new tracking service.
func NewTrackingService(
	identity *IdentityService,
	scorer *LeadScoreService,
	visitorRepo visitor.Repository,
	sessionRepo visitor.SessionRepository,
	eventRepo visitor.EventRepository,
	dispatcher *tasks.Dispatcher,
	activity *messaging.ActivityBroadcaster,
	logger *logging.ChanneledLogger,
) *TrackingService {
	return &TrackingService{
		identity:    identity,
		scorer:      scorer,
		visitorRepo: visitorRepo,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		dispatcher:  dispatcher,
		activity:    activity,
		logger:      logger,
		nowFn:       time.Now,
	}
}

// TrackPageView records a page view: the visitor row is created or
// touched, a page-view row is appended, and the lead score recomputed.
func (s *TrackingService) TrackPageView(input PageViewInput) bool {
	return s.dispatcher.Enqueue(input.VisitorID, func() {
		v, err := s.identity.Resolve(input.VisitorID, input.UserAgent, input.Source)
		if err != nil {
			s.logger.LogError(logging.ChannelTracking, "track_page_view", err, map[string]any{
				"pagePath": input.PagePath,
			})
			return
		}

		now := s.nowFn().UTC()
		pv := &visitor.PageView{
			ID:        security.GenerateULID(),
			VisitorID: v.VisitorID,
			SessionID: input.SessionID,
			PagePath:  input.PagePath,
			PageTitle: input.PageTitle,
			Referrer:  input.Referrer,
			UserAgent: input.UserAgent,
			CreatedAt: now,
		}
		if err := s.sessionRepo.Create(pv); err != nil {
			s.logger.LogError(logging.ChannelTracking, "track_page_view", err, map[string]any{
				"pagePath": input.PagePath,
			})
			return
		}

		if err := s.visitorRepo.Touch(v.VisitorID, now); err != nil {
			s.logger.LogError(logging.ChannelTracking, "touch_visitor", err, nil)
		}

		if _, err := s.scorer.Recompute(v.VisitorID); err != nil {
			s.logger.LogError(logging.ChannelAnalytics, "recompute_after_page_view", err, nil)
		}

		s.activity.Broadcast(messaging.ActivityEvent{
			Kind:      "page_view",
			VisitorID: v.VisitorID,
			Detail:    map[string]any{"pagePath": input.PagePath},
		})
	})
}

// TrackExternalClick records a click on an outbound link.
func (s *TrackingService) TrackExternalClick(input EventInput) bool {
	return s.trackEvent(visitor.EventExternalClick, input)
}

// TrackFormSubmission records a form submission. A client that sends a
// fields map anyway has it collapsed to its key names before storage.
func (s *TrackingService) TrackFormSubmission(input EventInput) bool {
	if fields, ok := input.Detail["fields"].(map[string]any); ok {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		input.Detail["fields"] = names
	}
	return s.trackEvent(visitor.EventFormSubmission, input)
}

func (s *TrackingService) trackEvent(eventType visitor.EventType, input EventInput) bool {
	return s.dispatcher.Enqueue(input.VisitorID, func() {
		v, err := s.identity.Resolve(input.VisitorID, input.UserAgent, "")
		if err != nil {
			s.logger.LogError(logging.ChannelTracking, "track_event", err, map[string]any{
				"eventType": string(eventType),
			})
			return
		}

		detail := input.Detail
		if detail == nil {
			detail = map[string]any{}
		}
		ev := &visitor.Event{
			ID:        security.GenerateULID(),
			VisitorID: v.VisitorID,
			SessionID: input.SessionID,
			EventType: eventType,
			EventData: detail,
			CreatedAt: s.nowFn().UTC(),
		}
		if err := s.eventRepo.Create(ev); err != nil {
			s.logger.LogError(logging.ChannelTracking, "track_event", err, map[string]any{
				"eventType": string(eventType),
			})
			return
		}

		if _, err := s.scorer.Recompute(v.VisitorID); err != nil {
			s.logger.LogError(logging.ChannelAnalytics, "recompute_after_event", err, nil)
		}

		s.activity.Broadcast(messaging.ActivityEvent{
			Kind:      string(eventType),
			VisitorID: v.VisitorID,
			Detail:    detail,
		})
	})
}

// TrackEmailSignup escalates a visitor to the email tier.
func (s *TrackingService) TrackEmailSignup(input SignupInput) bool {
	return s.trackIdentification(visitor.DesignationEmail, input)
}

// TrackRegistration escalates a visitor to the registered tier.
func (s *TrackingService) TrackRegistration(input SignupInput) bool {
	return s.trackIdentification(visitor.DesignationRegistered, input)
}

// TrackSubscription escalates a visitor to the subscriber tier. The
// plan is logged for the activity feed but not stored on the visitor.
func (s *TrackingService) TrackSubscription(input SignupInput) bool {
	return s.trackIdentification(visitor.DesignationSubscriber, input)
}

func (s *TrackingService) trackIdentification(next visitor.Designation, input SignupInput) bool {
	return s.dispatcher.Enqueue(input.VisitorID, func() {
		if _, err := s.identity.Resolve(input.VisitorID, input.UserAgent, input.Source); err != nil {
			s.logger.LogError(logging.ChannelTracking, "track_identification", err, map[string]any{
				"designation": string(next),
			})
			return
		}

		v, err := s.identity.Escalate(input.VisitorID, next, input.Email, input.Name)
		if err != nil {
			s.logger.LogError(logging.ChannelTracking, "track_identification", err, map[string]any{
				"designation": string(next),
			})
			return
		}

		if _, err := s.scorer.Recompute(v.VisitorID); err != nil {
			s.logger.LogError(logging.ChannelAnalytics, "recompute_after_identification", err, nil)
		}

		detail := map[string]any{"designation": string(v.Designation)}
		if input.Plan != "" {
			detail["plan"] = input.Plan
		}
		s.activity.Broadcast(messaging.ActivityEvent{
			Kind:      "identification",
			VisitorID: v.VisitorID,
			Detail:    detail,
		})
	})
}
