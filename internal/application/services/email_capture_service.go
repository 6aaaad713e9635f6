package services

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/email"
	"github.com/iknowag/engage-go/internal/infrastructure/email/templates"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/security"
	"github.com/iknowag/engage-go/pkg/config"
)

// EmailCaptureService records email signups from popups and inline
// forms, feeding them into visitor identification.
type EmailCaptureService struct {
	captureRepo domain.CaptureRepository
	tracking    *TrackingService
	emailSvc    email.Service
	logger      *logging.ChanneledLogger
	nowFn       func() time.Time
}

// NewEmailCaptureService creates a new email capture service. The email
// service may be nil when no notification sender is configured.
func NewEmailCaptureService(
	captureRepo domain.CaptureRepository,
	tracking *TrackingService,
	emailSvc email.Service,
	logger *logging.ChanneledLogger,
) *EmailCaptureService {
	return &EmailCaptureService{
		captureRepo: captureRepo,
		tracking:    tracking,
		emailSvc:    emailSvc,
		logger:      logger,
		nowFn:       time.Now,
	}
}

// Capture stores the email, escalates the submitting visitor to the
// email tier, and notifies the admin inbox in the background.
func (s *EmailCaptureService) Capture(emailAddr, name, source, visitorID string) (*domain.EmailCapture, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, fmt.Errorf("a valid email address is required")
	}
	if source == "" {
		source = "unknown"
	}

	capture := &domain.EmailCapture{
		ID:        security.GenerateULID(),
		Email:     emailAddr,
		Name:      name,
		Source:    source,
		CreatedAt: s.nowFn().UTC(),
	}
	if err := s.captureRepo.Create(capture); err != nil {
		return nil, fmt.Errorf("failed to store email capture: %w", err)
	}

	s.logger.Admin().Info("Email captured",
		"id", capture.ID,
		"source", source)

	if visitorID != "" {
		s.tracking.TrackEmailSignup(SignupInput{
			VisitorID: visitorID,
			Email:     emailAddr,
			Name:      name,
			Source:    source,
		})
	}

	if s.emailSvc != nil {
		go s.notify(capture)
	}
	return capture, nil
}

func (s *EmailCaptureService) notify(capture *domain.EmailCapture) {
	err := s.emailSvc.SendCaptureNotification(config.AdminEmail, templates.CaptureNotificationProps{
		Email:  capture.Email,
		Name:   capture.Name,
		Source: capture.Source,
	})
	if err != nil {
		s.logger.Email().Error("Capture notification failed",
			"error", err.Error(),
			"id", capture.ID)
		return
	}
	s.logger.Email().Info("Capture notification sent", "id", capture.ID)
}

// List returns every captured email, newest first.
func (s *EmailCaptureService) List() ([]*domain.EmailCapture, error) {
	return s.captureRepo.FindAll()
}

// Count returns the total number of captured emails.
func (s *EmailCaptureService) Count() (int, error) {
	return s.captureRepo.Count()
}
