package shared

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HumanizeStatus turns status tokens such as under_review into "Under Review".
func HumanizeStatus(status string) string {
	// Casers carry state and are not shared between goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(status, "_", " "))
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses an optional YYYY-MM-DD value.
func ParseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, NewValidationError(field, "must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

// TruncateDay drops the clock portion of t in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Summarize shortens s to at most n runes for activity descriptions.
func Summarize(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
