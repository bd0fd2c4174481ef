package feed

import (
	"testing"
	"time"

	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseFrequency(t *testing.T, code string) recurrence.Frequency {
	t.Helper()
	f, err := recurrence.ParseFrequency(code)
	require.NoError(t, err)
	return f
}

func TestRuleFor(t *testing.T) {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	t.Run("daily", func(t *testing.T) {
		rule, err := RuleFor(recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 1, 6),
			Frequency:    mustParseFrequency(t, "2D"),
		}, start)

		require.NoError(t, err)
		assert.Contains(t, rule.String(), "FREQ=DAILY")
		assert.Contains(t, rule.String(), "INTERVAL=2")
	})

	t.Run("weekly with day selectors", func(t *testing.T) {
		rule, err := RuleFor(recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 1, 6),
			Frequency:    mustParseFrequency(t, "1W"),
			Days:         []string{"Mon", "Wed"},
		}, start)

		require.NoError(t, err)
		assert.Contains(t, rule.String(), "FREQ=WEEKLY")
		assert.Contains(t, rule.String(), "BYDAY=MO,WE")
	})

	t.Run("monthly by day of month", func(t *testing.T) {
		rule, err := RuleFor(recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 1, 15),
			Frequency:    mustParseFrequency(t, "3M"),
			Days:         []string{"15"},
		}, start)

		require.NoError(t, err)
		assert.Contains(t, rule.String(), "FREQ=MONTHLY")
		assert.Contains(t, rule.String(), "INTERVAL=3")
		assert.Contains(t, rule.String(), "BYMONTHDAY=15")
	})

	t.Run("monthly by ordinal weekday", func(t *testing.T) {
		rule, err := RuleFor(recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 1, 13),
			Frequency:    mustParseFrequency(t, "1M2"),
			Days:         []string{"Mon"},
		}, start)

		require.NoError(t, err)
		assert.Contains(t, rule.String(), "FREQ=MONTHLY")
		assert.Contains(t, rule.String(), "BYDAY=+2MO")
	})

	t.Run("yearly", func(t *testing.T) {
		rule, err := RuleFor(recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 1, 15),
			Frequency:    mustParseFrequency(t, "1Y"),
			Days:         []string{"Jan 15"},
		}, start)

		require.NoError(t, err)
		assert.Contains(t, rule.String(), "FREQ=YEARLY")
		assert.Contains(t, rule.String(), "BYMONTH=1")
		assert.Contains(t, rule.String(), "BYMONTHDAY=15")
	})

	t.Run("stop date becomes an inclusive UNTIL", func(t *testing.T) {
		rule, err := RuleFor(recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 1, 6),
			Frequency:    mustParseFrequency(t, "1D"),
			StopDate:     mo.Some(recurrence.NewDate(2025, 2, 1)),
		}, start)

		require.NoError(t, err)
		assert.Contains(t, rule.String(), "UNTIL=20250131T235959Z")
	})

	t.Run("rejects an unknown weekday", func(t *testing.T) {
		_, err := RuleFor(recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 1, 6),
			Frequency:    mustParseFrequency(t, "1W"),
			Days:         []string{"Monday"},
		}, start)

		assert.Error(t, err)
	})
}
