package tools

import (
	"fmt"
	"strings"
	"time"
)

// Accepted layouts for user-facing dates and timestamps, tried in order.
// Layouts without a zone are normalized back without one so stored
// values echo what the caller provided.
var (
	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"Jan 2, 2006",
		"January 2, 2006",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	timestampLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

func parseDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Format("2006-01-02"), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", fmt.Errorf("cannot interpret %q as a calendar date", value)
}

func parseTimestamp(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if hasZone(layout) {
			return t.Format(time.RFC3339), nil
		}
		return t.Format("2006-01-02T15:04:05"), nil
	}
	return "", fmt.Errorf("cannot interpret %q as a timestamp", value)
}

func hasZone(layout string) bool {
	return strings.Contains(layout, "Z07") || strings.Contains(layout, "-07")
}
