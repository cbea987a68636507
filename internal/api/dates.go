package api

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD or RFC3339 and returns the instant in UTC
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("must be a date in YYYY-MM-DD or RFC3339 format")
	}
	return t.UTC(), nil
}

// parseOptionalDate is parseDate for query parameters that may be absent
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(s)
}
