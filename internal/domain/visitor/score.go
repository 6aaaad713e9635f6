package visitor

import "strings"

// ScoreWeights holds the fixed weighted-rule model for lead scoring. Only the
// high-value path list varies per deployment; the weights define what the
// score means and are constants.
type ScoreWeights struct {
	PerPageView       int
	PageViewCap       int
	PerHighValueVisit int
	PerFormSubmission int
	PerExternalClick  int
	HighValuePaths    []string
}

// DefaultScoreWeights returns the standard scoring model.
func DefaultScoreWeights(highValuePaths []string) ScoreWeights {
	return ScoreWeights{
		PerPageView:       2,
		PageViewCap:       50,
		PerHighValueVisit: 10,
		PerFormSubmission: 25,
		PerExternalClick:  5,
		HighValuePaths:    highValuePaths,
	}
}

// ComputeLeadScore derives an engagement score from a visitor's full page-view
// and event history. It is a pure function of the history: recomputing over
// the same rows always yields the same result, and appending rows never
// lowers it. Only the page-view term is capped.
func ComputeLeadScore(sessions []*PageView, events []*Event, w ScoreWeights) int {
	score := 0

	pageViews := len(sessions) * w.PerPageView
	if pageViews > w.PageViewCap {
		pageViews = w.PageViewCap
	}
	score += pageViews

	for _, s := range sessions {
		if isHighValuePath(s.PagePath, w.HighValuePaths) {
			score += w.PerHighValueVisit
		}
	}

	for _, ev := range events {
		switch ev.EventType {
		case EventFormSubmission:
			score += w.PerFormSubmission
		case EventExternalClick:
			score += w.PerExternalClick
		}
	}

	return score
}

func isHighValuePath(path string, highValuePaths []string) bool {
	for _, hv := range highValuePaths {
		if strings.Contains(path, hv) {
			return true
		}
	}
	return false
}
