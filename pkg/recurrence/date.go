package recurrence

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time of day. All recurrence math operates
// on Dates; wall-clock times are attached later from the habit's start time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses an ISO date like "2025-03-14".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Time(time.UTC).Format("2006-01-02")
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of d in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At combines d with a wall-clock hour and minute in the given location.
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

// DaysSince returns the number of days from other to d (negative if d is
// earlier).
func (d Date) DaysSince(other Date) int {
	return int(d.Time(time.UTC).Sub(other.Time(time.UTC)) / (24 * time.Hour))
}

func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// WeekdayName returns the three-letter weekday abbreviation used in day
// selectors, following a Sunday-start convention: "Sun".."Sat".
func (d Date) WeekdayName() string {
	return d.Weekday().String()[:3]
}

// YearlyKey formats d the way yearly day selectors are written, e.g. "Jan 15".
func (d Date) YearlyKey() string {
	return fmt.Sprintf("%s %d", d.Month.String()[:3], d.Day)
}

// WeekdayOccurrence returns which occurrence of its weekday d is within its
// month, 1-based: the 1st..7th is 1, the 8th..14th is 2, and so on.
func (d Date) WeekdayOccurrence() int {
	return (d.Day-1)/7 + 1
}

// MonthsBetween returns the absolute number of whole calendar months between
// the two dates' year/month coordinates, ignoring the day of month.
func MonthsBetween(a, b Date) int {
	months := (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
	if months < 0 {
		months = -months
	}
	return months
}

// CompleteWeeksBetween returns the number of complete 7-day spans between the
// two dates.
func CompleteWeeksBetween(a, b Date) int {
	days := b.DaysSince(a)
	if days < 0 {
		days = -days
	}
	return days / 7
}
