package util

import (
	"strings"
	"time"
)

// DateLayout is the canonical date format. It is zero-padded and fixed-width,
// so lexical order of canonical strings equals calendar order.
const DateLayout = "2006-01-02"

// DeriveRevisionDate returns the date one calendar year after release.
// Feb 29 rolls over to Mar 1 the way time.AddDate normalizes it.
func DeriveRevisionDate(release time.Time) time.Time {
	return release.AddDate(1, 0, 0)
}

// DeriveRevision is DeriveRevisionDate over canonical strings.
func DeriveRevision(release string) (string, error) {
	t, err := ParseDate(release)
	if err != nil {
		return "", err
	}
	return FormatDate(DeriveRevisionDate(t)), nil
}

// FormatDate renders t as a canonical date, dropping the time of day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDate truncates any time-of-day component from a date string,
// e.g. "2025-01-01T00:00:00.000+00:00" becomes "2025-01-01".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseDate parses a date string after normalizing it.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, NormalizeDate(s))
}

// Today returns the canonical date of now in its own location.
func Today(now time.Time) string {
	return FormatDate(now)
}
