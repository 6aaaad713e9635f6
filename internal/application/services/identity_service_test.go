package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/internal/domain/visitor"
)

func TestResolveCreatesAnonymousVisitorOnce(t *testing.T) {
	repo := newMemVisitorRepo()
	identity := newTestIdentity(t, repo)

	v, err := identity.Resolve("11111111-1111-4111-8111-111111111111", "Mozilla/5.0", "google")
	require.NoError(t, err)
	require.Equal(t, visitor.DesignationVisitor, v.Designation)
	require.Equal(t, "google", v.OriginalSource)
	require.Equal(t, "unknown", v.IPAddress)
	require.Nil(t, v.Email)
	require.Zero(t, v.VisitCount)

	// Same ID resolves to the same row, not a second one.
	again, err := identity.Resolve("11111111-1111-4111-8111-111111111111", "Mozilla/5.0", "twitter")
	require.NoError(t, err)
	require.Equal(t, v.VisitorID, again.VisitorID)
	require.Equal(t, "google", again.OriginalSource)
	require.Len(t, repo.visitors, 1)
}

func TestResolveDefaultsEmptySourceToUnknown(t *testing.T) {
	repo := newMemVisitorRepo()
	identity := newTestIdentity(t, repo)

	v, err := identity.Resolve("22222222-2222-4222-8222-222222222222", "", "")
	require.NoError(t, err)
	require.Equal(t, "unknown", v.OriginalSource)
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	repo := newMemVisitorRepo()
	repo.failFind = true
	identity := newTestIdentity(t, repo)

	_, err := identity.Resolve("33333333-3333-4333-8333-333333333333", "", "")
	require.Error(t, err)
}

func TestEscalateMovesForwardOnly(t *testing.T) {
	repo := newMemVisitorRepo()
	identity := newTestIdentity(t, repo)
	identity.nowFn = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	const id = "44444444-4444-4444-8444-444444444444"
	_, err := identity.Resolve(id, "", "")
	require.NoError(t, err)

	v, err := identity.Escalate(id, visitor.DesignationEmail, "pat@example.com", "Pat")
	require.NoError(t, err)
	require.Equal(t, visitor.DesignationEmail, v.Designation)
	require.NotNil(t, v.Email)
	require.Equal(t, "pat@example.com", *v.Email)
	require.NotNil(t, v.IdentifiedAt)
	firstIdentified := *v.IdentifiedAt

	v, err = identity.Escalate(id, visitor.DesignationSubscriber, "", "")
	require.NoError(t, err)
	require.Equal(t, visitor.DesignationSubscriber, v.Designation)
	// The identification instant is recorded once and kept.
	require.Equal(t, firstIdentified, *v.IdentifiedAt)
	// Email survives an escalation that carries none.
	require.Equal(t, "pat@example.com", *v.Email)

	// Downgrade attempts are silent no-ops.
	v, err = identity.Escalate(id, visitor.DesignationEmail, "", "")
	require.NoError(t, err)
	require.Equal(t, visitor.DesignationSubscriber, v.Designation)
}

func TestEscalateRejectsUnknownTier(t *testing.T) {
	repo := newMemVisitorRepo()
	identity := newTestIdentity(t, repo)

	const id = "55555555-5555-4555-8555-555555555555"
	_, err := identity.Resolve(id, "", "")
	require.NoError(t, err)

	_, err = identity.Escalate(id, visitor.Designation("vip"), "", "")
	require.Error(t, err)
}

func TestEscalateUnknownVisitorFails(t *testing.T) {
	repo := newMemVisitorRepo()
	identity := newTestIdentity(t, repo)

	_, err := identity.Escalate("never-seen", visitor.DesignationEmail, "", "")
	require.Error(t, err)
}
