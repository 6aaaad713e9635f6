// Package services contains the application-layer orchestration between
// the HTTP surface and the domain repositories.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/enrichment"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
	"github.com/iknowag/engage-go/pkg/config"
)

// IdentityService resolves visitor IDs to visitor rows, creating
// anonymous visitors on first contact and escalating their designation
// as they identify themselves.
type IdentityService struct {
	visitorRepo visitor.Repository
	enricher    *enrichment.Client
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	nowFn       func() time.Time
}

// NewIdentityService creates a new identity service.
func NewIdentityService(
	visitorRepo visitor.Repository,
	enricher *enrichment.Client,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *IdentityService {
	return &IdentityService{
		visitorRepo: visitorRepo,
		enricher:    enricher,
		logger:      logger,
		perfTracker: perfTracker,
		nowFn:       time.Now,
	}
}

// Resolve returns the visitor row for an ID, creating an anonymous
// visitor when the ID has never been seen. The same ID always resolves
// to the same row.
func (s *IdentityService) Resolve(visitorID, userAgent, source string) (*visitor.Visitor, error) {
	marker := s.perfTracker.StartOperation("resolve_visitor")
	defer s.perfTracker.CompleteOperation(marker)

	existing, err := s.visitorRepo.FindByID(visitorID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to resolve visitor: %w", err)
	}
	if existing != nil {
		marker.SetSuccess(true)
		return existing, nil
	}

	now := s.nowFn().UTC()
	v := &visitor.Visitor{
		VisitorID:      visitorID,
		Designation:    visitor.DesignationVisitor,
		OriginalSource: source,
		IPAddress:      enrichment.Unknown,
		Location:       enrichment.Unknown,
		Timezone:       enrichment.Unknown,
		UserAgent:      userAgent,
		VisitCount:     0,
		FirstSeen:      now,
		LastActivity:   now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if v.OriginalSource == "" {
		v.OriginalSource = "unknown"
	}

	if s.enricher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), config.EnrichmentTimeout)
		profile := s.enricher.Lookup(ctx)
		cancel()
		v.IPAddress = profile.IPAddress
		v.Location = profile.Location
		v.Timezone = profile.Timezone
	}

	if err := s.visitorRepo.Create(v); err != nil {
		// Lost race against a concurrent first visit: the row exists now.
		if recovered, findErr := s.visitorRepo.FindByID(visitorID); findErr == nil && recovered != nil {
			marker.SetSuccess(true)
			return recovered, nil
		}
		marker.SetError(err)
		return nil, fmt.Errorf("failed to create visitor: %w", err)
	}

	s.logger.WithVisitor(logging.ChannelTracking, visitorID).Info("New visitor created",
		"source", v.OriginalSource,
		"location", v.Location)
	marker.SetSuccess(true)
	return v, nil
}

// Escalate raises a visitor's designation, recording their email and
// name when provided. Downgrades are silently ignored; the designation
// only ever moves forward.
func (s *IdentityService) Escalate(visitorID string, next visitor.Designation, email, name string) (*visitor.Visitor, error) {
	marker := s.perfTracker.StartOperation("escalate_visitor")
	defer s.perfTracker.CompleteOperation(marker)

	if !next.Valid() {
		err := fmt.Errorf("unknown designation: %s", next)
		marker.SetError(err)
		return nil, err
	}

	v, err := s.visitorRepo.FindByID(visitorID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load visitor for escalation: %w", err)
	}
	if v == nil {
		err := fmt.Errorf("visitor not found: %s", visitorID)
		marker.SetError(err)
		return nil, err
	}

	now := s.nowFn().UTC()
	changed := false

	escalated := v.Designation.Escalate(next)
	if escalated != v.Designation {
		v.Designation = escalated
		if v.IdentifiedAt == nil {
			v.IdentifiedAt = &now
		}
		changed = true
	}
	if email != "" && (v.Email == nil || *v.Email != email) {
		v.Email = &email
		changed = true
	}
	if name != "" && (v.Name == nil || *v.Name != name) {
		v.Name = &name
		changed = true
	}

	if !changed {
		marker.SetSuccess(true)
		return v, nil
	}

	v.UpdatedAt = now
	if err := s.visitorRepo.Update(v); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to escalate visitor: %w", err)
	}

	s.logger.WithVisitor(logging.ChannelTracking, visitorID).Info("Visitor designation updated",
		"designation", string(v.Designation))
	marker.SetSuccess(true)
	return v, nil
}
