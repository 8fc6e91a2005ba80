// Package booking holds the reservation rules: date intervals and their
// buffer windows, overlap queries, the ghost booking sweep, request
// status transitions and the per-user cooldowns.  Nothing in this
// package performs I/O; callers load the rows, ask for a decision and
// then persist it.
package booking

import "time"

const (
	// PreparationDays is the number of days before an event during which
	// the venue is being set up.
	PreparationDays = 3
	// CleanupDays is the number of days after an event reserved for
	// cleanup and maintenance.
	CleanupDays = 1

	// DateLayout is the wire format of booking dates.
	DateLayout = "2006-01-02"
)

// Day truncates t to UTC midnight of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, Validation("Invalid date %q: use YYYY-MM-DD.", s)
	}
	return t, nil
}

// Interval is a closed range of whole days.  Both Start and End are
// occupied.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval returns [start, start+days-1].
func NewInterval(start time.Time, days int) (Interval, error) {
	if days < 1 {
		return Interval{}, Validation("The duration must be at least one day.")
	}
	s := Day(start)
	return Interval{Start: s, End: s.AddDate(0, 0, days-1)}, nil
}

// Span returns the interval between two days, swapping them if needed.
func Span(a, b time.Time) Interval {
	a, b = Day(a), Day(b)
	if b.Before(a) {
		a, b = b, a
	}
	return Interval{Start: a, End: b}
}

// Overlaps reports whether the two intervals share at least one day.
// A range ending on the day another starts overlaps it.
func (iv Interval) Overlaps(o Interval) bool {
	return !iv.Start.After(o.End) && !iv.End.Before(o.Start)
}

// Contains reports whether day falls inside the interval.
func (iv Interval) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Union returns the smallest interval covering both.
func (iv Interval) Union(o Interval) Interval {
	out := iv
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if o.End.After(out.End) {
		out.End = o.End
	}
	return out
}

// Shift moves both ends by the given number of days.
func (iv Interval) Shift(days int) Interval {
	return Interval{Start: iv.Start.AddDate(0, 0, days), End: iv.End.AddDate(0, 0, days)}
}

// Days returns the number of occupied days.
func (iv Interval) Days() int {
	return int(iv.End.Sub(iv.Start).Hours()/24) + 1
}

func (iv Interval) String() string {
	return "[" + iv.Start.Format(DateLayout) + ", " + iv.End.Format(DateLayout) + "]"
}

// Windows are the ranges a venue is unavailable for around an event.
type Windows struct {
	Preparation Interval
	Event       Interval
	Cleanup     Interval
	Blocked     Interval
}

// BlockedWindows derives the preparation, cleanup and total blocked
// windows around an event interval.
func BlockedWindows(event Interval) Windows {
	prep := Interval{
		Start: event.Start.AddDate(0, 0, -PreparationDays),
		End:   event.Start.AddDate(0, 0, -1),
	}
	cleanup := Interval{
		Start: event.End.AddDate(0, 0, 1),
		End:   event.End.AddDate(0, 0, CleanupDays),
	}
	return Windows{
		Preparation: prep,
		Event:       event,
		Cleanup:     cleanup,
		Blocked:     prep.Union(event).Union(cleanup),
	}
}
