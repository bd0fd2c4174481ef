package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFrequency(t *testing.T, code string) Frequency {
	t.Helper()
	f, err := ParseFrequency(code)
	require.NoError(t, err)
	return f
}

func TestOccursOn_Daily(t *testing.T) {
	creation := NewDate(2025, time.January, 6)

	t.Run("every day occurs on every date from creation", func(t *testing.T) {
		s := Schedule{CreationDate: creation, Frequency: mustFrequency(t, "1D")}
		for i := 0; i < 30; i++ {
			assert.True(t, s.OccursOn(creation.AddDays(i)), "day +%d", i)
		}
	})

	t.Run("every other day skips odd offsets", func(t *testing.T) {
		s := Schedule{CreationDate: creation, Frequency: mustFrequency(t, "2D")}
		assert.True(t, s.OccursOn(creation))
		assert.False(t, s.OccursOn(creation.AddDays(1)))
		assert.True(t, s.OccursOn(creation.AddDays(2)))
		assert.False(t, s.OccursOn(creation.AddDays(3)))
		assert.True(t, s.OccursOn(creation.AddDays(10)))
	})

	t.Run("never occurs before creation date", func(t *testing.T) {
		s := Schedule{CreationDate: creation, Frequency: mustFrequency(t, "1D")}
		assert.False(t, s.OccursOn(creation.AddDays(-1)))
		assert.False(t, s.OccursOn(creation.AddDays(-2)))
	})
}

func TestOccursOn_Weekly(t *testing.T) {
	// 2025-01-06 is a Monday.
	creation := NewDate(2025, time.January, 6)
	s := Schedule{
		CreationDate: creation,
		Frequency:    mustFrequency(t, "1W"),
		Days:         []string{"Mon", "Wed", "Fri"},
	}

	t.Run("occurs on selected weekdays only", func(t *testing.T) {
		assert.True(t, s.OccursOn(creation))            // Mon
		assert.False(t, s.OccursOn(creation.AddDays(1))) // Tue
		assert.True(t, s.OccursOn(creation.AddDays(2)))  // Wed
		assert.False(t, s.OccursOn(creation.AddDays(3))) // Thu
		assert.True(t, s.OccursOn(creation.AddDays(4)))  // Fri
		assert.False(t, s.OccursOn(creation.AddDays(5))) // Sat
		assert.False(t, s.OccursOn(creation.AddDays(6))) // Sun
		assert.True(t, s.OccursOn(creation.AddDays(7)))  // next Mon
	})

	t.Run("biweekly cadence counts complete weeks", func(t *testing.T) {
		s := Schedule{
			CreationDate: creation,
			Frequency:    mustFrequency(t, "2W"),
			Days:         []string{"Mon"},
		}
		assert.True(t, s.OccursOn(creation))
		assert.False(t, s.OccursOn(creation.AddDays(7)))
		assert.True(t, s.OccursOn(creation.AddDays(14)))
		assert.False(t, s.OccursOn(creation.AddDays(21)))
		assert.True(t, s.OccursOn(creation.AddDays(28)))
	})
}

func TestOccursOn_MonthlyByDay(t *testing.T) {
	creation := NewDate(2025, time.January, 15)
	s := Schedule{
		CreationDate: creation,
		Frequency:    mustFrequency(t, "1M"),
		Days:         []string{"15"},
	}

	assert.True(t, s.OccursOn(NewDate(2025, time.January, 15)))
	assert.True(t, s.OccursOn(NewDate(2025, time.February, 15)))
	assert.True(t, s.OccursOn(NewDate(2025, time.December, 15)))
	assert.False(t, s.OccursOn(NewDate(2025, time.February, 14)))
	assert.False(t, s.OccursOn(NewDate(2025, time.February, 16)))

	t.Run("every third month", func(t *testing.T) {
		s := Schedule{
			CreationDate: creation,
			Frequency:    mustFrequency(t, "3M"),
			Days:         []string{"15"},
		}
		assert.True(t, s.OccursOn(NewDate(2025, time.January, 15)))
		assert.False(t, s.OccursOn(NewDate(2025, time.February, 15)))
		assert.False(t, s.OccursOn(NewDate(2025, time.March, 15)))
		assert.True(t, s.OccursOn(NewDate(2025, time.April, 15)))
		assert.True(t, s.OccursOn(NewDate(2026, time.January, 15)))
	})

	t.Run("multiple day-of-month selectors", func(t *testing.T) {
		s := Schedule{
			CreationDate: creation,
			Frequency:    mustFrequency(t, "1M"),
			Days:         []string{"1", "15"},
		}
		assert.True(t, s.OccursOn(NewDate(2025, time.February, 1)))
		assert.True(t, s.OccursOn(NewDate(2025, time.February, 15)))
		assert.False(t, s.OccursOn(NewDate(2025, time.February, 2)))
	})
}

func TestOccursOn_MonthlyByWeekday(t *testing.T) {
	creation := NewDate(2025, time.January, 1)
	// Second Monday of every month.
	s := Schedule{
		CreationDate: creation,
		Frequency:    mustFrequency(t, "1M2"),
		Days:         []string{"Mon"},
	}

	assert.True(t, s.OccursOn(NewDate(2025, time.January, 13)))
	assert.False(t, s.OccursOn(NewDate(2025, time.January, 6)))  // first Monday
	assert.False(t, s.OccursOn(NewDate(2025, time.January, 20))) // third Monday
	assert.False(t, s.OccursOn(NewDate(2025, time.January, 14))) // second Tuesday
	assert.True(t, s.OccursOn(NewDate(2025, time.February, 10)))
	assert.True(t, s.OccursOn(NewDate(2025, time.March, 10)))
}

func TestOccursOn_Yearly(t *testing.T) {
	creation := NewDate(2025, time.January, 15)
	s := Schedule{
		CreationDate: creation,
		Frequency:    mustFrequency(t, "1Y"),
		Days:         []string{"Jan 15"},
	}

	assert.True(t, s.OccursOn(NewDate(2025, time.January, 15)))
	assert.True(t, s.OccursOn(NewDate(2026, time.January, 15)))
	assert.False(t, s.OccursOn(NewDate(2026, time.January, 14)))
	assert.False(t, s.OccursOn(NewDate(2026, time.February, 15)))

	t.Run("every second year", func(t *testing.T) {
		s := Schedule{
			CreationDate: creation,
			Frequency:    mustFrequency(t, "2Y"),
			Days:         []string{"Jan 15"},
		}
		assert.True(t, s.OccursOn(NewDate(2025, time.January, 15)))
		assert.False(t, s.OccursOn(NewDate(2026, time.January, 15)))
		assert.True(t, s.OccursOn(NewDate(2027, time.January, 15)))
	})
}

func TestOccursOn_ExceptionDates(t *testing.T) {
	creation := NewDate(2025, time.January, 6)
	excluded := creation.AddDays(2)
	s := Schedule{
		CreationDate:   creation,
		Frequency:      mustFrequency(t, "1D"),
		ExceptionDates: []Date{excluded},
	}

	assert.True(t, s.OccursOn(creation.AddDays(1)))
	assert.False(t, s.OccursOn(excluded))
	assert.True(t, s.OccursOn(creation.AddDays(3)))
}

func TestOccursOn_StopDate(t *testing.T) {
	creation := NewDate(2025, time.January, 6)
	stop := creation.AddDays(10)
	s := Schedule{
		CreationDate: creation,
		Frequency:    mustFrequency(t, "1D"),
		StopDate:     mo.Some(stop),
	}

	// Stop date is an exclusive bound.
	assert.True(t, s.OccursOn(stop.AddDays(-1)))
	assert.False(t, s.OccursOn(stop))
	assert.False(t, s.OccursOn(stop.AddDays(1)))
}

func TestOccurrencesBetween(t *testing.T) {
	creation := NewDate(2025, time.January, 6)
	s := Schedule{
		CreationDate: creation,
		Frequency:    mustFrequency(t, "1W"),
		Days:         []string{"Mon", "Fri"},
	}

	dates := s.OccurrencesBetween(creation, creation.AddDays(13))
	assert.Equal(t, []Date{
		NewDate(2025, time.January, 6),
		NewDate(2025, time.January, 10),
		NewDate(2025, time.January, 13),
		NewDate(2025, time.January, 17),
	}, dates)
}
