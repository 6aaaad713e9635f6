package services

import (
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/security"
)

// PartnershipService manages active partner engagements.
type PartnershipService struct {
	partnershipRepo domain.PartnershipRepository
	logger          *logging.ChanneledLogger
	nowFn           func() time.Time
}

// NewPartnershipService creates a new partnership service.
func NewPartnershipService(
	partnershipRepo domain.PartnershipRepository,
	logger *logging.ChanneledLogger,
) *PartnershipService {
	return &PartnershipService{
		partnershipRepo: partnershipRepo,
		logger:          logger,
		nowFn:           time.Now,
	}
}

// Create records a new partnership, typically after an application is approved.
func (s *PartnershipService) Create(p *domain.Partnership) (*domain.Partnership, error) {
	if p.CompanyName == "" {
		return nil, fmt.Errorf("company name is required")
	}

	now := s.nowFn().UTC()
	p.ID = security.GenerateULID()
	if p.Status == "" {
		p.Status = "active"
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = now
	}
	p.CreatedAt = now

	if err := s.partnershipRepo.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create partnership: %w", err)
	}

	s.logger.Admin().Info("Partnership created",
		"id", p.ID,
		"companyName", p.CompanyName)
	return p, nil
}

// List returns every partnership, newest first.
func (s *PartnershipService) List() ([]*domain.Partnership, error) {
	return s.partnershipRepo.FindAll()
}

// Count returns the total number of partnerships.
func (s *PartnershipService) Count() (int, error) {
	return s.partnershipRepo.Count()
}
