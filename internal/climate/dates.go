package climate

import (
	"fmt"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used by the store and the API.
const DateLayout = "2006-01-02"

// WindowDays is the length of the trailing window in calendar days.
const WindowDays = 365

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// WindowStart returns the first day of the trailing window ending at latest.
// Days are subtracted on the calendar, so a leap day inside the window is counted.
func WindowStart(latest time.Time) time.Time {
	return latest.AddDate(0, 0, -WindowDays)
}

// DateRange is a closed range of calendar dates. A nil End leaves the range open above.
type DateRange struct {
	Start time.Time
	End   *time.Time
}

// Contains reports whether d lies in the range.
func (r DateRange) Contains(d time.Time) bool {
	if d.Before(r.Start) {
		return false
	}
	return r.End == nil || !d.After(*r.End)
}

// ParseDateRange validates raw start/end strings. An empty end means open-ended.
// An end before start is accepted; it simply matches nothing.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	r := DateRange{Start: s}
	if end != "" {
		e, err := ParseDate(end)
		if err != nil {
			return DateRange{}, err
		}
		r.End = &e
	}
	return r, nil
}
