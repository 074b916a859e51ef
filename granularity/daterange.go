package granularity

import (
	"fmt"
	"time"
)

// DefaultLayout is the date format accepted at the system boundary.
const DefaultLayout = "2006-01-02"

// FormatError reports a date string that does not match the configured layout.
type FormatError struct {
	Value  string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid date format %q (expected %s): %v", e.Value, e.Layout, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// RangeError reports a range whose end falls before its start.
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range: end %s is before start %s",
		e.End.Format(DefaultLayout), e.Start.Format(DefaultLayout))
}

// DateRange is an inclusive range of calendar days, normalized to UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes both endpoints to day resolution and checks ordering.
func NewDateRange(start, end time.Time) (DateRange, error) {
	rng := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if rng.End.Before(rng.Start) {
		return DateRange{}, &RangeError{Start: rng.Start, End: rng.End}
	}
	return rng, nil
}

// ParseRange parses both endpoints with layout. An empty layout means DefaultLayout.
func ParseRange(start, end, layout string) (DateRange, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	s, err := time.ParseInLocation(layout, start, time.UTC)
	if err != nil {
		return DateRange{}, &FormatError{Value: start, Layout: layout, Err: err}
	}
	e, err := time.ParseInLocation(layout, end, time.UTC)
	if err != nil {
		return DateRange{}, &FormatError{Value: end, Layout: layout, Err: err}
	}
	return NewDateRange(s, e)
}

// Days is the whole-day span end - start.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start) / day)
}

// DayEnd is the last second of the range's final day.
func (r DateRange) DayEnd() time.Time {
	return r.End.Add(day - time.Second)
}

// Equal compares normalized endpoints.
func (r DateRange) Equal(o DateRange) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Key identifies the range for caching and single-flight grouping.
func (r DateRange) Key() string {
	return r.Start.Format(DefaultLayout) + "/" + r.End.Format(DefaultLayout)
}

func (r DateRange) String() string { return r.Key() }

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
