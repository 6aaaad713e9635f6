// Package visitor provides the concrete SQL-based implementations of the
// visitor tracking repositories (Visitor, PageView, Event).
package visitor

import (
	"fmt"
	"time"
)

const sqlTimeFormat = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqlTimeFormat)
}

// parseTimestamp handles multiple timestamp formats
func parseTimestamp(timestampStr string) (time.Time, error) {
	// Try RFC3339 first
	if t, err := time.Parse(time.RFC3339, timestampStr); err == nil {
		return t, nil
	}

	// Try SQLite format
	if t, err := time.Parse(sqlTimeFormat, timestampStr); err == nil {
		return t, nil
	}

	// Try ISO format with milliseconds
	if t, err := time.Parse("2006-01-02T15:04:05.000Z", timestampStr); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp format: %s", timestampStr)
}

func parseNullableTimestamp(timestampStr *string) *time.Time {
	if timestampStr == nil || *timestampStr == "" {
		return nil
	}
	t, err := parseTimestamp(*timestampStr)
	if err != nil {
		return nil
	}
	return &t
}
