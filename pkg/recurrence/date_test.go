package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.March, 14), d)
	assert.Equal(t, "2025-03-14", d.String())

	_, err = ParseDate("14/03/2025")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, time.January, 30)
	assert.Equal(t, NewDate(2025, time.February, 1), d.AddDays(2))
	assert.Equal(t, NewDate(2025, time.January, 28), d.AddDays(-2))
	assert.Equal(t, 31, NewDate(2025, time.February, 1).DaysSince(NewDate(2025, time.January, 1)))
	assert.Equal(t, -31, NewDate(2025, time.January, 1).DaysSince(NewDate(2025, time.February, 1)))
	assert.True(t, NewDate(2025, time.January, 1).Before(NewDate(2025, time.January, 2)))
	assert.True(t, NewDate(2025, time.January, 2).After(NewDate(2025, time.January, 1)))
}

func TestWeekdayName(t *testing.T) {
	// 2025-01-05 is a Sunday.
	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	for i, want := range names {
		assert.Equal(t, want, NewDate(2025, time.January, 5+i).WeekdayName())
	}
}

func TestYearlyKey(t *testing.T) {
	assert.Equal(t, "Jan 15", NewDate(2025, time.January, 15).YearlyKey())
	assert.Equal(t, "Dec 3", NewDate(2025, time.December, 3).YearlyKey())
}

func TestWeekdayOccurrence(t *testing.T) {
	assert.Equal(t, 1, NewDate(2025, time.January, 1).WeekdayOccurrence())
	assert.Equal(t, 1, NewDate(2025, time.January, 7).WeekdayOccurrence())
	assert.Equal(t, 2, NewDate(2025, time.January, 8).WeekdayOccurrence())
	assert.Equal(t, 3, NewDate(2025, time.January, 20).WeekdayOccurrence())
	assert.Equal(t, 5, NewDate(2025, time.January, 31).WeekdayOccurrence())
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, MonthsBetween(NewDate(2025, time.January, 1), NewDate(2025, time.January, 31)))
	assert.Equal(t, 1, MonthsBetween(NewDate(2025, time.January, 31), NewDate(2025, time.February, 1)))
	assert.Equal(t, 13, MonthsBetween(NewDate(2025, time.January, 15), NewDate(2026, time.February, 15)))
	assert.Equal(t, 13, MonthsBetween(NewDate(2026, time.February, 15), NewDate(2025, time.January, 15)))
}

func TestCompleteWeeksBetween(t *testing.T) {
	a := NewDate(2025, time.January, 6)
	assert.Equal(t, 0, CompleteWeeksBetween(a, a.AddDays(6)))
	assert.Equal(t, 1, CompleteWeeksBetween(a, a.AddDays(7)))
	assert.Equal(t, 1, CompleteWeeksBetween(a, a.AddDays(13)))
	assert.Equal(t, 2, CompleteWeeksBetween(a.AddDays(14), a))
}
