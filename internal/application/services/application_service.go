package services

import (
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/email"
	"github.com/iknowag/engage-go/internal/infrastructure/email/templates"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/security"
	"github.com/iknowag/engage-go/pkg/config"
)

// ApplicationService handles partnership application intake and review.
type ApplicationService struct {
	appRepo  domain.ApplicationRepository
	tracking *TrackingService
	emailSvc email.Service
	logger   *logging.ChanneledLogger
	nowFn    func() time.Time
}

// NewApplicationService creates a new application service. The email
// service may be nil when no notification sender is configured.
func NewApplicationService(
	appRepo domain.ApplicationRepository,
	tracking *TrackingService,
	emailSvc email.Service,
	logger *logging.ChanneledLogger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:  appRepo,
		tracking: tracking,
		emailSvc: emailSvc,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// Submit stores a new application and notifies the admin inbox. The
// notification is sent in the background; a mail failure never fails
// the submission. The submitting visitor gets a form submission
// recorded against them so the application feeds their lead score.
func (s *ApplicationService) Submit(app *domain.Application, visitorID string) (*domain.Application, error) {
	if app.CompanyName == "" {
		return nil, fmt.Errorf("company name is required")
	}
	if app.ContactEmail == "" {
		return nil, fmt.Errorf("contact email is required")
	}

	app.ID = security.GenerateULID()
	app.Status = domain.ApplicationPending
	app.CreatedAt = s.nowFn().UTC()
	app.ReviewedAt = nil
	app.ReviewedBy = nil

	if err := s.appRepo.Create(app); err != nil {
		return nil, fmt.Errorf("failed to submit application: %w", err)
	}

	s.logger.Admin().Info("Application submitted",
		"id", app.ID,
		"companyName", app.CompanyName)

	if visitorID != "" {
		s.tracking.TrackFormSubmission(EventInput{
			VisitorID: visitorID,
			Detail:    map[string]any{"formId": "partnership_application"},
		})
	}

	if s.emailSvc != nil {
		go s.notify(app)
	}
	return app, nil
}

func (s *ApplicationService) notify(app *domain.Application) {
	err := s.emailSvc.SendApplicationNotification(config.AdminEmail, templates.ApplicationNotificationProps{
		CompanyName:     app.CompanyName,
		ContactName:     app.ContactName,
		ContactEmail:    app.ContactEmail,
		PartnershipType: app.PartnershipType,
		Timeline:        app.Timeline,
	})
	if err != nil {
		s.logger.Email().Error("Application notification failed",
			"error", err.Error(),
			"id", app.ID)
		return
	}
	s.logger.Email().Info("Application notification sent", "id", app.ID)
}

// List returns every application, newest first.
func (s *ApplicationService) List() ([]*domain.Application, error) {
	return s.appRepo.FindAll()
}

// Get returns one application, or nil when it does not exist.
func (s *ApplicationService) Get(id string) (*domain.Application, error) {
	return s.appRepo.FindByID(id)
}

// Review records an approve/reject decision on a pending application.
func (s *ApplicationService) Review(id, status, reviewedBy string) error {
	if status != domain.ApplicationApproved && status != domain.ApplicationRejected {
		return fmt.Errorf("invalid review status: %s", status)
	}

	if err := s.appRepo.UpdateStatus(id, status, reviewedBy, s.nowFn().UTC()); err != nil {
		return err
	}

	s.logger.Admin().Info("Application reviewed",
		"id", id,
		"status", status,
		"reviewedBy", reviewedBy)
	return nil
}

// CountByStatus returns application counts grouped by review status.
func (s *ApplicationService) CountByStatus() (map[string]int, error) {
	return s.appRepo.CountByStatus()
}
