package recurrence

import (
	"slices"
	"strconv"

	"github.com/samber/mo"
)

// Schedule describes when a repeating event occurs. It is a pure value: the
// predicate below has no I/O, no state, and is safe for concurrent use.
//
// The interpretation of Days depends on the frequency kind:
// weekday abbreviations ("Mon".."Sun") for Weekly and MonthlyByWeekday,
// day-of-month numerals ("15") for MonthlyByDay, and "Jan 15"-style
// month+day strings for Yearly. Daily schedules ignore Days.
type Schedule struct {
	// CreationDate anchors every cadence computation.
	CreationDate Date
	Frequency    Frequency
	Days         []string
	// ExceptionDates are dates excluded from an otherwise matching cadence,
	// typically because that occurrence was individually edited or deleted.
	ExceptionDates []Date
	// StopDate is an exclusive upper bound: no occurrence happens on or after
	// it.
	StopDate mo.Option[Date]
}

// OccursOn reports whether the schedule produces an occurrence on target.
// A date occurs iff it matches the frequency cadence relative to the creation
// date, satisfies the day selector for the frequency kind, is not an exception
// date, is on or after the creation date, and is strictly before the stop date
// when one is set.
func (s Schedule) OccursOn(target Date) bool {
	if target.Before(s.CreationDate) {
		return false
	}
	if stop, ok := s.StopDate.Get(); ok && !target.Before(stop) {
		return false
	}
	if slices.Contains(s.ExceptionDates, target) {
		return false
	}

	switch s.Frequency.Kind {
	case Daily:
		days := target.DaysSince(s.CreationDate)
		if days < 0 {
			days = -days
		}
		return days%s.Frequency.Interval == 0
	case Weekly:
		if CompleteWeeksBetween(s.CreationDate, target)%s.Frequency.Interval != 0 {
			return false
		}
		return slices.Contains(s.Days, target.WeekdayName())
	case MonthlyByDay:
		if MonthsBetween(s.CreationDate, target)%s.Frequency.Interval != 0 {
			return false
		}
		return slices.Contains(s.Days, strconv.Itoa(target.Day))
	case MonthlyByWeekday:
		if MonthsBetween(s.CreationDate, target)%s.Frequency.Interval != 0 {
			return false
		}
		return slices.Contains(s.Days, target.WeekdayName()) &&
			target.WeekdayOccurrence() == s.Frequency.Ordinal
	case Yearly:
		years := target.Year - s.CreationDate.Year
		if years < 0 {
			years = -years
		}
		if years%s.Frequency.Interval != 0 {
			return false
		}
		return slices.Contains(s.Days, target.YearlyKey())
	}
	return false
}

// OccurrencesBetween returns every date in [from, to] (inclusive) on which
// the schedule occurs, in ascending order.
func (s Schedule) OccurrencesBetween(from, to Date) []Date {
	var dates []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		if s.OccursOn(d) {
			dates = append(dates, d)
		}
	}
	return dates
}
