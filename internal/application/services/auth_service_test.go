package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/internal/infrastructure/security"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()

	hash, err := security.HashPassword("correct horse")
	require.NoError(t, err)

	return &AuthService{
		adminEmail:   "admin@example.com",
		passwordHash: hash,
		jwtSecret:    "test-secret",
		tokenTTL:     time.Hour,
		logger:       testLogger(t),
	}
}

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	svc := newTestAuth(t)

	token, err := svc.Login("admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", email)
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	svc := newTestAuth(t)

	token, err := svc.Login("ADMIN@Example.COM", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestAuth(t)

	_, wrongEmail := svc.Login("someone@example.com", "correct horse")
	_, wrongPassword := svc.Login("admin@example.com", "wrong")

	require.Error(t, wrongEmail)
	require.Error(t, wrongPassword)
	assert.Equal(t, wrongEmail.Error(), wrongPassword.Error())
}

func TestLoginRefusedWithoutConfiguredCredentials(t *testing.T) {
	svc := newTestAuth(t)
	svc.passwordHash = ""

	_, err := svc.Login("admin@example.com", "correct horse")
	assert.Error(t, err)
}

func TestValidateTokenRejectsForgedToken(t *testing.T) {
	svc := newTestAuth(t)

	forged, err := security.GenerateAdminToken("admin@example.com", "other-secret", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	svc := newTestAuth(t)

	expired, err := security.GenerateAdminToken("admin@example.com", "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(expired)
	assert.Error(t, err)
}
