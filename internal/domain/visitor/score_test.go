package visitor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func pageViews(paths ...string) []*PageView {
	views := make([]*PageView, 0, len(paths))
	for i, path := range paths {
		views = append(views, &PageView{
			ID:        fmt.Sprintf("pv-%d", i),
			VisitorID: "v-1",
			PagePath:  path,
		})
	}
	return views
}

func eventsOf(types ...EventType) []*Event {
	events := make([]*Event, 0, len(types))
	for i, t := range types {
		events = append(events, &Event{
			ID:        fmt.Sprintf("ev-%d", i),
			VisitorID: "v-1",
			EventType: t,
			EventData: map[string]any{},
		})
	}
	return events
}

func TestComputeLeadScore(t *testing.T) {
	weights := DefaultScoreWeights([]string{"/partnership", "/about", "/admin"})

	tests := []struct {
		name     string
		sessions []*PageView
		events   []*Event
		expected int
	}{
		{
			name:     "empty history scores zero",
			sessions: nil,
			events:   nil,
			expected: 0,
		},
		{
			name:     "plain page views",
			sessions: pageViews("/", "/pricing", "/blog"),
			expected: 6,
		},
		{
			name:     "page view term caps at fifty",
			sessions: pageViews(repeat("/blog", 40)...),
			expected: 50,
		},
		{
			name:     "high value visit adds ten on top of view points",
			sessions: pageViews("/partnership"),
			expected: 12,
		},
		{
			name:     "high value matches path substring",
			sessions: pageViews("/partnership/apply"),
			expected: 12,
		},
		{
			name:     "high value bonus is not capped",
			sessions: pageViews(repeat("/about", 40)...),
			expected: 50 + 40*10,
		},
		{
			name:     "form submission adds twenty five",
			events:   eventsOf(EventFormSubmission),
			expected: 25,
		},
		{
			name:     "external click adds five",
			events:   eventsOf(EventExternalClick),
			expected: 5,
		},
		{
			name:     "mixed history",
			sessions: pageViews("/", "/about", "/pricing"),
			events:   eventsOf(EventFormSubmission, EventExternalClick, EventExternalClick),
			expected: 3*2 + 10 + 25 + 5 + 5,
		},
		{
			name:     "unknown event types score nothing",
			events:   eventsOf(EventType("page_ping")),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLeadScore(tt.sessions, tt.events, weights)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeLeadScoreDeterministic(t *testing.T) {
	weights := DefaultScoreWeights([]string{"/partnership"})
	sessions := pageViews("/", "/partnership", "/pricing")
	events := eventsOf(EventFormSubmission, EventExternalClick)

	first := ComputeLeadScore(sessions, events, weights)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, ComputeLeadScore(sessions, events, weights))
	}
}

func TestComputeLeadScoreNeverDropsWhenHistoryGrows(t *testing.T) {
	weights := DefaultScoreWeights([]string{"/partnership"})

	var sessions []*PageView
	var events []*Event
	previous := 0

	for i := 0; i < 60; i++ {
		sessions = append(sessions, &PageView{ID: fmt.Sprintf("pv-%d", i), PagePath: "/blog"})
		score := ComputeLeadScore(sessions, events, weights)
		require.GreaterOrEqual(t, score, previous)
		previous = score
	}

	events = append(events, &Event{ID: "ev-1", EventType: EventExternalClick})
	score := ComputeLeadScore(sessions, events, weights)
	require.GreaterOrEqual(t, score, previous)
}

func repeat(path string, n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = path
	}
	return paths
}
