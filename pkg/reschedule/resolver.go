// Package reschedule computes new event timestamps from a partial change
// request: any subset of {start date, start time, end date, end time, length}
// can be supplied, and unspecified fields keep their current values. Both
// entry points are pure functions; identical inputs always produce identical
// outputs.
package reschedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/samber/mo"
)

// Change holds the fields of an event a user asked to move. Times are
// wall-clock "HH:MM" strings; dates carry no time of day. Time-of-day is only
// changed when explicitly requested (or implied by a length change against an
// explicitly moved start), which is what keeps all-day events all-day when
// only their date moves.
type Change struct {
	StartDate     mo.Option[recurrence.Date]
	StartTime     mo.Option[string]
	EndDate       mo.Option[recurrence.Date]
	EndTime       mo.Option[string]
	LengthMinutes mo.Option[int]
}

// clockTime is a parsed HH:MM value.
type clockTime struct {
	hour   int
	minute int
}

func parseClock(s string) (clockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return clockTime{}, badTimeFormat(fmt.Sprintf("invalid time %q: expected HH:MM", s))
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return clockTime{}, badTimeFormat(fmt.Sprintf("invalid time %q: hour must be between 00 and 23", s))
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return clockTime{}, badTimeFormat(fmt.Sprintf("invalid time %q: minute must be between 00 and 59", s))
	}
	return clockTime{hour: hour, minute: minute}, nil
}

// withDate moves ts to another calendar date, keeping its time of day and
// location.
func withDate(ts time.Time, d recurrence.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), ts.Location())
}

// withClock sets the time of day of ts, zeroing seconds.
func withClock(ts time.Time, c clockTime) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), c.hour, c.minute, 0, 0, ts.Location())
}

// parsed is the validated form of a Change.
type parsed struct {
	startDate mo.Option[recurrence.Date]
	startTime mo.Option[clockTime]
	endDate   mo.Option[recurrence.Date]
	endTime   mo.Option[clockTime]
	length    mo.Option[int]
}

func (c Change) parse() (parsed, error) {
	p := parsed{startDate: c.StartDate, endDate: c.EndDate, length: c.LengthMinutes}
	if s, ok := c.StartTime.Get(); ok {
		ct, err := parseClock(s)
		if err != nil {
			return parsed{}, err
		}
		p.startTime = mo.Some(ct)
	}
	if s, ok := c.EndTime.Get(); ok {
		ct, err := parseClock(s)
		if err != nil {
			return parsed{}, err
		}
		p.endTime = mo.Some(ct)
	}
	if n, ok := c.LengthMinutes.Get(); ok && n < 0 {
		return parsed{}, &Error{Category: BadLength, Detail: fmt.Sprintf("length must be at least 0 minutes, got %d", n)}
	}
	return p, nil
}

// ResolveStart computes the new start timestamp: the current start with its
// date and/or time of day replaced by whatever the change supplies.
func ResolveStart(currentStart time.Time, change Change) (time.Time, error) {
	p, err := change.parse()
	if err != nil {
		return time.Time{}, err
	}
	newStart := currentStart
	if d, ok := p.startDate.Get(); ok {
		newStart = withDate(newStart, d)
	}
	if ct, ok := p.startTime.Get(); ok {
		newStart = withClock(newStart, ct)
	}
	return newStart, nil
}

// ResolveEnd computes the new end timestamp for an occurrence whose current
// start, end, and length (in minutes) are given. The decision is a priority
// table over which change fields are present: a supplied start date governs
// first, then a start time, then an end date, then an end time, then a length
// change, and with nothing supplied the current end is returned unchanged.
//
// Ambiguous combinations are rejected rather than guessed: once the start
// moves, a new end date without a new end time cannot be reconciled with a
// length change (or with a changed start time), and the caller is expected to
// ask the user which they meant.
func ResolveEnd(currentLength int, currentStart, currentEnd time.Time, change Change) (time.Time, error) {
	p, err := change.parse()
	if err != nil {
		return time.Time{}, err
	}

	switch {
	case p.startDate.IsPresent():
		newStart := withDate(currentStart, p.startDate.MustGet())
		if ct, ok := p.startTime.Get(); ok {
			newStart = withClock(newStart, ct)
		}
		return resolveEndAfterStartChange(currentLength, currentEnd, newStart, p)

	case p.startTime.IsPresent():
		newStart := withClock(currentStart, p.startTime.MustGet())
		return resolveEndAfterStartChange(currentLength, currentEnd, newStart, p)

	case p.endDate.IsPresent():
		newEnd := withDate(currentEnd, p.endDate.MustGet())
		if ct, ok := p.endTime.Get(); ok {
			newEnd = withClock(newEnd, ct)
		} else if n, ok := p.length.Get(); ok {
			// Anchor the length at the current start's time of day on the new
			// end date.
			newEnd = withClock(newEnd, clockTime{hour: currentStart.Hour(), minute: currentStart.Minute()}).
				Add(time.Duration(n) * time.Minute)
		}
		if newEnd.Before(currentStart) {
			return time.Time{}, ErrEndBeforeStart
		}
		return newEnd, nil

	case p.endTime.IsPresent():
		newEnd := withClock(currentEnd, p.endTime.MustGet())
		if newEnd.Before(currentStart) {
			return time.Time{}, ErrEndBeforeStart
		}
		return newEnd, nil

	case p.length.IsPresent():
		return currentStart.Add(time.Duration(p.length.MustGet()) * time.Minute), nil

	default:
		return currentEnd, nil
	}
}

// resolveEndAfterStartChange handles the sub-cases shared by the two branches
// that move the start (new date and/or new time): an explicit end date, an
// explicit end time, a length change, or falling back to the current length.
func resolveEndAfterStartChange(currentLength int, currentEnd, newStart time.Time, p parsed) (time.Time, error) {
	if d, ok := p.endDate.Get(); ok {
		newEnd := withDate(currentEnd, d)
		switch {
		case p.endTime.IsPresent():
			newEnd = withClock(newEnd, p.endTime.MustGet())
		case p.length.IsPresent() && p.startTime.IsPresent():
			return time.Time{}, contradiction(
				"a new end date together with a new length is ambiguous once the start time changes; drop the end date or provide an end time")
		case p.length.IsPresent():
			return time.Time{}, contradiction(
				"a new end date together with a new length is ambiguous; drop the end date or provide both an end date and an end time")
		case p.startTime.IsPresent():
			return time.Time{}, contradiction(
				"a new end date needs a new end time once the start time changes")
		}
		if newEnd.Before(newStart) {
			return time.Time{}, ErrEndBeforeStart
		}
		return newEnd, nil
	}

	if ct, ok := p.endTime.Get(); ok {
		newEnd := withClock(newStart, ct)
		if newEnd.Before(newStart) {
			return time.Time{}, ErrEndBeforeStart
		}
		return newEnd, nil
	}

	if n, ok := p.length.Get(); ok {
		return newStart.Add(time.Duration(n) * time.Minute), nil
	}
	return newStart.Add(time.Duration(currentLength) * time.Minute), nil
}

// ResolveAllDay decides whether the updated occurrence is an all-day event.
// An explicit flag always wins, but declaring an event all-day while also
// giving it a start or end time is contradictory. Without an explicit flag,
// supplying any time of day turns an all-day event into a timed one.
func ResolveAllDay(current bool, explicit mo.Option[bool], change Change) (bool, error) {
	timed := change.StartTime.IsPresent() || change.EndTime.IsPresent()
	if flag, ok := explicit.Get(); ok {
		if flag && timed {
			return false, contradiction("an all-day event cannot have a start or end time")
		}
		return flag, nil
	}
	if timed {
		return false, nil
	}
	return current, nil
}
