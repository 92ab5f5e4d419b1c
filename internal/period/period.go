// Package period computes the calendar windows budgets are measured over.
package period

import (
	"time"

	"fintrack/internal/models"
)

// Window is an inclusive time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Compute returns the window of kind p that contains ref, in ref's location.
// Weeks start on Monday. Unknown kinds are treated as monthly.
func Compute(p models.BudgetPeriod, ref time.Time) Window {
	loc := ref.Location()
	y, m, d := ref.Date()

	var start, next time.Time
	switch p {
	case models.BudgetPeriodWeekly:
		// Monday = 0 ... Sunday = 6
		offset := (int(ref.Weekday()) + 6) % 7
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 0, 7)
	case models.BudgetPeriodYearly:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		next = start.AddDate(1, 0, 0)
	default:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	}
	return Window{Start: start, End: next.Add(-time.Nanosecond)}
}

// Contains reports whether t lies inside the window. It is the in-memory form
// of the "date BETWEEN start_date AND end_date" filter spend queries use.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether the two inclusive windows share at least one
// instant. Budget selection and conflict checks evaluate the same predicate
// in SQL ("start_date <= end AND end_date >= start"); the two must agree.
func (w Window) Overlaps(o Window) bool {
	return !w.Start.After(o.End) && !w.End.Before(o.Start)
}

// Storable returns the window in UTC with End truncated to microseconds,
// the precision of a postgres timestamp column.
func (w Window) Storable() Window {
	return Window{
		Start: w.Start.UTC(),
		End:   w.End.UTC().Truncate(time.Microsecond),
	}
}

// Valid reports whether p is a known period kind.
func Valid(p models.BudgetPeriod) bool {
	switch p {
	case models.BudgetPeriodWeekly, models.BudgetPeriodMonthly, models.BudgetPeriodYearly:
		return true
	}
	return false
}
