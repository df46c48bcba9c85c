package utils

import (
	"fmt"
	"time"
)

// DateLayout is the YYYY-MM-DD form used by date filters and file names
const DateLayout = "2006-01-02"

// BeginningOfDay returns midnight of t's day
func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day
func EndOfDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DateRange is an inclusive range; a nil bound is open
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange parses optional YYYY-MM-DD bounds into an inclusive whole-day range
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from != "" {
		t, err := time.ParseInLocation(DateLayout, from, time.UTC)
		if err != nil {
			return r, fmt.Errorf("invalid date_from %q: %w", from, err)
		}
		start := BeginningOfDay(t)
		r.From = &start
	}
	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, time.UTC)
		if err != nil {
			return r, fmt.Errorf("invalid date_to %q: %w", to, err)
		}
		end := EndOfDay(t)
		r.To = &end
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, fmt.Errorf("date_to %s is before date_from %s", to, from)
	}
	return r, nil
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// FileDate formats t for use in export file names
func FileDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
