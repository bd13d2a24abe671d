// Package calendar resolves civil days, weeks and months in the single timezone the
// engine runs in, and compares wall-clock shift times.
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

const (
	// DateLayout formats execution dates on reports and exports.
	DateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Range is a half-open [Start, End) interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Filter turns the range into a record store filter.
func (r Range) Filter(employeeID string) models.RecordFilter {
	return models.RecordFilter{EmployeeID: employeeID, From: r.Start, To: r.End}
}

// Resolver answers calendar questions in one fixed location.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver loads the IANA timezone name and builds a resolver for it.
func NewResolver(timezone string, opts ...Option) (*Resolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return NewResolverIn(loc, opts...), nil
}

// NewResolverIn builds a resolver for an already loaded location.
func NewResolverIn(loc *time.Location, opts ...Option) *Resolver {
	r := &Resolver{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Location returns the civil timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the current instant expressed in the civil timezone.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// DayOf returns civil midnight of the day containing t. This is the execution date.
func (r *Resolver) DayOf(t time.Time) time.Time {
	local := t.In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
}

// DayRange returns the civil day containing t.
func (r *Resolver) DayRange(t time.Time) Range {
	start := r.DayOf(t)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// Today returns the current civil day.
func (r *Resolver) Today() Range {
	return r.DayRange(r.now())
}

// MonthRange returns the civil month. Month must be 1..12.
func (r *Resolver) MonthRange(year, month int) (Range, error) {
	if month < 1 || month > 12 {
		return Range{}, fmt.Errorf("%w: got %d", models.ErrInvalidMonth, month)
	}
	if year < 1970 || year > 9999 {
		return Range{}, fmt.Errorf("%w: year %d out of range", models.ErrInvalidMonth, year)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, r.loc)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// CurrentWeek returns the seven execution dates Monday through Sunday of this week.
func (r *Resolver) CurrentWeek() []time.Time {
	today := r.DayOf(r.now())
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	return r.DaysIn(Range{Start: monday, End: monday.AddDate(0, 0, 7)})
}

// RestOfWeek returns today through Sunday.
func (r *Resolver) RestOfWeek() []time.Time {
	week := r.CurrentWeek()
	today := r.DayOf(r.now())
	for i, day := range week {
		if day.Equal(today) {
			return week[i:]
		}
	}
	return nil
}

// DaysIn lists every execution date starting inside the range.
func (r *Resolver) DaysIn(rng Range) []time.Time {
	var days []time.Time
	for day := r.DayOf(rng.Start); day.Before(rng.End); day = day.AddDate(0, 0, 1) {
		if day.Before(rng.Start) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// IsAfterToday reports whether the execution date is strictly later than today.
func (r *Resolver) IsAfterToday(day time.Time) bool {
	return !r.DayOf(day).Before(r.Today().End)
}
