package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date key format. Keys in this layout sort
// lexicographically in date order.
const DateLayout = "2006-01-02"

// NormalizeDate converts a backend date value into a YYYY-MM-DD key.
// Bare dates and RFC 3339 timestamps are accepted; a timestamp keeps the
// calendar date of its own offset.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.Format(DateLayout), true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.Format(DateLayout), true
	}
	// "2024-01-02T00:00:00" without an offset
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.Format(DateLayout), true
	}
	return "", false
}

// ParseDateIn returns midnight of the date key in loc.
func ParseDateIn(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, key, loc)
}
