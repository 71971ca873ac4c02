// Package dateonly converts between YYYY-MM-DD strings and stored timestamps.
package dateonly

import (
	"time"
)

func Parse(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// ParsePtr returns nil for a nil or empty input.
func ParsePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := Parse(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func Format(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

// Today is the UTC calendar date of now at midnight UTC, matching how stored
// dates are scanned.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
