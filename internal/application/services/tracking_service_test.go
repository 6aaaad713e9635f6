package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/messaging"
	"github.com/iknowag/engage-go/internal/infrastructure/tasks"
)

func newTestTracking(t *testing.T, repo *memVisitorRepo, sessions *memSessionRepo, events *memEventRepo) (*TrackingService, *tasks.Dispatcher) {
	t.Helper()
	logger := testLogger(t)
	dispatcher := tasks.NewDispatcher(2, 64, logger)
	identity := newTestIdentity(t, repo)
	scorer := newTestScorer(t, repo, sessions, events)
	activity := messaging.NewActivityBroadcaster(logger)

	tracking := NewTrackingService(identity, scorer, repo, sessions, events, dispatcher, activity, logger)
	return tracking, dispatcher
}

func TestTrackPageViewRecordsAndScores(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, repo, sessions, events)

	const id = "12121212-1212-4212-8212-121212121212"
	queued := tracking.TrackPageView(PageViewInput{
		VisitorID: id,
		SessionID: "sess-1",
		PagePath:  "/partnership",
		PageTitle: "Partnerships",
		UserAgent: "Mozilla/5.0",
		Source:    "google",
	})
	require.True(t, queued)

	dispatcher.Close()

	v := repo.get(id)
	require.NotNil(t, v, "page view must create the visitor")
	require.Equal(t, 1, v.VisitCount)
	require.Equal(t, 2+10, v.LeadScore)

	views, err := sessions.FindByVisitorID(id)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "/partnership", views[0].PagePath)
	require.NotEmpty(t, views[0].ID)
}

func TestTrackEventsAccumulateScore(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, repo, sessions, events)

	const id = "34343434-3434-4434-8434-343434343434"
	require.True(t, tracking.TrackPageView(PageViewInput{VisitorID: id, PagePath: "/"}))
	require.True(t, tracking.TrackFormSubmission(EventInput{
		VisitorID: id,
		Detail:    map[string]any{"fields": []string{"email", "name"}},
	}))
	require.True(t, tracking.TrackExternalClick(EventInput{
		VisitorID: id,
		Detail:    map[string]any{"url": "https://example.com"},
	}))

	dispatcher.Close()

	v := repo.get(id)
	require.NotNil(t, v)
	require.Equal(t, 2+25+5, v.LeadScore)

	stored, err := events.FindByVisitorID(id)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, visitor.EventFormSubmission, stored[0].EventType)
	require.Equal(t, visitor.EventExternalClick, stored[1].EventType)
}

func TestTrackFormSubmissionStoresFieldNamesOnly(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, repo, sessions, events)

	const id = "34343434-3434-4434-8434-343434343434"
	queued := tracking.TrackFormSubmission(EventInput{
		VisitorID: id,
		Detail: map[string]any{
			"formId": "contact",
			"fields": map[string]any{
				"email":   "jane@example.com",
				"message": "hello there",
			},
		},
	})
	require.True(t, queued)

	dispatcher.Close()

	recorded, err := events.FindByVisitorID(id)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	require.Equal(t, []string{"email", "message"}, recorded[0].EventData["fields"])
	require.Equal(t, "contact", recorded[0].EventData["formId"])
}

func TestTrackSignupEscalatesDesignation(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, repo, sessions, events)

	const id = "56565656-5656-4656-8656-565656565656"
	require.True(t, tracking.TrackEmailSignup(SignupInput{
		VisitorID: id,
		Email:     "sam@example.com",
		Name:      "Sam",
		Source:    "popup",
	}))
	require.True(t, tracking.TrackSubscription(SignupInput{
		VisitorID: id,
		Email:     "sam@example.com",
		Plan:      "annual",
	}))
	// A stale signup arriving after the subscription must not downgrade.
	require.True(t, tracking.TrackEmailSignup(SignupInput{
		VisitorID: id,
		Email:     "sam@example.com",
	}))

	dispatcher.Close()

	v := repo.get(id)
	require.NotNil(t, v)
	require.Equal(t, visitor.DesignationSubscriber, v.Designation)
	require.Equal(t, "sam@example.com", *v.Email)
	require.NotNil(t, v.IdentifiedAt)
}

func TestTrackSignupRecomputesScore(t *testing.T) {
	repo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, repo, sessions, events)

	const id = "78787878-7878-4878-8878-787878787878"
	queued := tracking.TrackEmailSignup(SignupInput{
		VisitorID: id,
		Email:     "lee@example.com",
		Source:    "newsletter",
	})
	require.True(t, queued)

	dispatcher.Close()

	v := repo.get(id)
	require.NotNil(t, v)
	require.Equal(t, visitor.DesignationEmail, v.Designation)
	require.Equal(t, 0, v.LeadScore)
	require.NotNil(t, v.LeadScoreUpdated, "identification must stamp the score")
	require.Equal(t, 1, repo.scoreWrites)
}

func TestTrackFailuresNeverSurfaceToCaller(t *testing.T) {
	repo := newMemVisitorRepo()
	repo.failFind = true
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, repo, sessions, events)

	// The write fails in the background; the enqueue itself succeeds.
	require.True(t, tracking.TrackPageView(PageViewInput{
		VisitorID: "78787878-7878-4878-8878-787878787878",
		PagePath:  "/",
	}))
	dispatcher.Close()
}
