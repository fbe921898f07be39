package services

import (
	"strings"
	"time"

	"exercisetracker/internal/models"

	"github.com/araddon/dateparse"
)

const dateOnly = "2006-01-02"

// Calendar date forms tried before the general parser so they stay at
// midnight UTC. models.DateLayout lets rendered dates be posted back.
var dateOnlyLayouts = []string{
	dateOnly,
	"2006-1-2",
	"2006/1/2",
	models.DateLayout,
	"Mon Jan 2 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDate parses a client supplied date. The boolean result reports whether
// the value was a bare calendar date, which is interpreted as midnight UTC.
func parseDate(raw string) (time.Time, bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, false
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true, true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), false, true
		}
	}
	if !strings.ContainsAny(raw, "0123456789") {
		return time.Time{}, false, false
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false, false
	}
	t = t.UTC()
	bare := !strings.Contains(raw, ":") && t.Equal(t.Truncate(24*time.Hour))
	return t, bare, true
}

// upperBound widens a bare calendar date to the last instant of that day.
func upperBound(raw string) (time.Time, bool) {
	t, bare, ok := parseDate(raw)
	if !ok {
		return time.Time{}, false
	}
	if bare {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
