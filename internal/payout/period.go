package payout

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Period is an inclusive range over session date times.
type Period struct {
	Start time.Time
	End   time.Time
}

func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, fmt.Errorf("%w: period start and end are required", ErrValidation)
	}
	if start.After(end) {
		return Period{}, fmt.Errorf("%w: period start is after period end", ErrValidation)
	}
	return Period{Start: start.UTC(), End: end.UTC()}, nil
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ParsePeriodBound accepts an RFC3339 instant or a plain YYYY-MM-DD date. A
// date resolves to the first (or, with endOfDay, the last) instant of that day
// in loc.
func ParsePeriodBound(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty period bound", ErrValidation)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}

	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither RFC3339 nor YYYY-MM-DD", ErrValidation, value)
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return day.UTC(), nil
}
