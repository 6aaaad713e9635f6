package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/security"
	"github.com/iknowag/engage-go/pkg/config"
)

// AuthService authenticates the admin against the configured
// credentials and issues dashboard session tokens.
type AuthService struct {
	adminEmail   string
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
	logger       *logging.ChanneledLogger
}

// NewAuthService creates a new auth service from the configured admin
// credentials.
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{
		adminEmail:   config.AdminEmail,
		passwordHash: config.AdminPasswordHash,
		jwtSecret:    config.JWTSecret,
		tokenTTL:     config.AdminTokenTTL,
		logger:       logger,
	}
}

// Login verifies the credentials and returns a signed session token.
// The same error is returned for every failure mode so a caller cannot
// probe which part was wrong.
func (s *AuthService) Login(email, password string) (string, error) {
	invalid := fmt.Errorf("invalid credentials")

	if s.passwordHash == "" || s.jwtSecret == "" {
		s.logger.Admin().Error("Admin login attempted without configured credentials")
		return "", invalid
	}
	if !strings.EqualFold(email, s.adminEmail) {
		s.logger.Admin().Warn("Admin login failed", "reason", "unknown email")
		return "", invalid
	}
	if !security.CheckPassword(s.passwordHash, password) {
		s.logger.Admin().Warn("Admin login failed", "reason", "bad password")
		return "", invalid
	}

	token, err := security.GenerateAdminToken(s.adminEmail, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Admin().Info("Admin logged in")
	return token, nil
}

// ValidateToken checks a session token and returns the admin email it
// was issued to.
func (s *AuthService) ValidateToken(token string) (string, error) {
	claims, err := security.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return "", err
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("token missing email claim")
	}
	return email, nil
}
