package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/internal/domain/visitor"
)

func seedVisitor(t *testing.T, repo *memVisitorRepo, id string) {
	t.Helper()
	identity := newTestIdentity(t, repo)
	_, err := identity.Resolve(id, "", "")
	require.NoError(t, err)
}

func TestRecomputeStoresScore(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	scorer := newTestScorer(t, repo, sessions, events)

	const id = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	seedVisitor(t, repo, id)

	sessions.Create(&visitor.PageView{ID: "pv-1", VisitorID: id, PagePath: "/"})
	sessions.Create(&visitor.PageView{ID: "pv-2", VisitorID: id, PagePath: "/partnership"})
	events.Create(&visitor.Event{ID: "ev-1", VisitorID: id, EventType: visitor.EventFormSubmission})

	score, err := scorer.Recompute(id)
	require.NoError(t, err)
	require.Equal(t, 2*2+10+25, score)

	stored := repo.get(id)
	require.Equal(t, score, stored.LeadScore)
	require.NotNil(t, stored.LeadScoreUpdated)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	scorer := newTestScorer(t, repo, sessions, events)

	const id = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	seedVisitor(t, repo, id)
	sessions.Create(&visitor.PageView{ID: "pv-1", VisitorID: id, PagePath: "/about"})

	first, err := scorer.Recompute(id)
	require.NoError(t, err)
	second, err := scorer.Recompute(id)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRecomputeAbortsWhenPageViewReadFails(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{failRead: true}
	events := &memEventRepo{}
	scorer := newTestScorer(t, repo, sessions, events)

	const id = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
	seedVisitor(t, repo, id)

	_, err := scorer.Recompute(id)
	require.Error(t, err)
	require.Zero(t, repo.scoreWrites, "failed history read must not overwrite the stored score")
}

func TestRecomputeAbortsWhenEventReadFails(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{failRead: true}
	scorer := newTestScorer(t, repo, sessions, events)

	const id = "dddddddd-dddd-4ddd-8ddd-dddddddddddd"
	seedVisitor(t, repo, id)
	sessions.Create(&visitor.PageView{ID: "pv-1", VisitorID: id, PagePath: "/"})

	_, err := scorer.Recompute(id)
	require.Error(t, err)
	require.Zero(t, repo.scoreWrites)
}

func TestRecomputePropagatesWriteFailure(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	scorer := newTestScorer(t, repo, sessions, events)

	const id = "eeeeeeee-eeee-4eee-8eee-eeeeeeeeeeee"
	seedVisitor(t, repo, id)
	repo.failScore = true

	_, err := scorer.Recompute(id)
	require.Error(t, err)
}
