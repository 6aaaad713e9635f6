package services

import (
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
)

// SettingsService manages the keyed settings scopes edited from the
// admin dashboard: site settings, email settings, and content blocks.
type SettingsService struct {
	settingsRepo domain.SettingsRepository
	logger       *logging.ChanneledLogger
	nowFn        func() time.Time
}

// NewSettingsService creates a new settings service.
func NewSettingsService(
	settingsRepo domain.SettingsRepository,
	logger *logging.ChanneledLogger,
) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
		nowFn:        time.Now,
	}
}

func validScope(scope string) bool {
	switch scope {
	case domain.ScopeSite, domain.ScopeEmail, domain.ScopeContent:
		return true
	}
	return false
}

// Get returns every key/value pair under a scope.
func (s *SettingsService) Get(scope string) (map[string]string, error) {
	if !validScope(scope) {
		return nil, fmt.Errorf("unknown settings scope: %s", scope)
	}
	return s.settingsRepo.Get(scope)
}

// Save upserts a batch of key/value pairs under a scope.
func (s *SettingsService) Save(scope string, values map[string]string) error {
	if !validScope(scope) {
		return fmt.Errorf("unknown settings scope: %s", scope)
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.settingsRepo.Set(scope, values, s.nowFn().UTC()); err != nil {
		return err
	}

	s.logger.Admin().Info("Settings saved",
		"scope", scope,
		"keys", len(values))
	return nil
}
