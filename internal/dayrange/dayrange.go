// Package dayrange turns calendar dates into half-open UTC intervals.
// All "which day is this workout for" questions go through here so that
// day boundaries are computed in exactly one place and always in UTC.
package dayrange

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the accepted date format.
const Layout = "2006-01-02"

// Range is the half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Date returns the range's calendar date in Layout form.
func (r Range) Date() string {
	return r.Start.Format(Layout)
}

// Parse builds the range for a YYYY-MM-DD date.
func Parse(date string) (Range, error) {
	day, err := time.ParseInLocation(Layout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return Range{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return ForDay(day), nil
}

// ForDay returns the UTC day containing t.
func ForDay(t time.Time) Range {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// ParseOrToday parses date, or returns today's range when date is blank.
func ParseOrToday(date string, now time.Time) (Range, error) {
	if strings.TrimSpace(date) == "" {
		return ForDay(now), nil
	}
	return Parse(date)
}
