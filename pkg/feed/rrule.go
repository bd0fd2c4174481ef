package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/teambition/rrule-go"
)

var weekdays = map[string]rrule.Weekday{
	"Sun": rrule.SU,
	"Mon": rrule.MO,
	"Tue": rrule.TU,
	"Wed": rrule.WE,
	"Thu": rrule.TH,
	"Fri": rrule.FR,
	"Sat": rrule.SA,
}

// RuleFor translates a schedule into the equivalent RRULE, anchored at the
// given start timestamp of the first occurrence.
func RuleFor(schedule recurrence.Schedule, start time.Time) (*rrule.RRule, error) {
	option := rrule.ROption{
		Interval: schedule.Frequency.Interval,
		Dtstart:  start,
	}

	switch schedule.Frequency.Kind {
	case recurrence.Daily:
		option.Freq = rrule.DAILY

	case recurrence.Weekly:
		option.Freq = rrule.WEEKLY
		byDay, err := selectedWeekdays(schedule.Days)
		if err != nil {
			return nil, err
		}
		option.Byweekday = byDay

	case recurrence.MonthlyByDay:
		option.Freq = rrule.MONTHLY
		for _, day := range schedule.Days {
			n, err := strconv.Atoi(day)
			if err != nil {
				return nil, fmt.Errorf("invalid day of month %q", day)
			}
			option.Bymonthday = append(option.Bymonthday, n)
		}

	case recurrence.MonthlyByWeekday:
		option.Freq = rrule.MONTHLY
		byDay, err := selectedWeekdays(schedule.Days)
		if err != nil {
			return nil, err
		}
		for i, day := range byDay {
			byDay[i] = day.Nth(schedule.Frequency.Ordinal)
		}
		option.Byweekday = byDay

	case recurrence.Yearly:
		option.Freq = rrule.YEARLY
		for _, key := range schedule.Days {
			month, day, err := parseYearlyKey(key)
			if err != nil {
				return nil, err
			}
			option.Bymonth = append(option.Bymonth, month)
			option.Bymonthday = append(option.Bymonthday, day)
		}

	default:
		return nil, fmt.Errorf("unsupported frequency %s", schedule.Frequency)
	}

	if stop, ok := schedule.StopDate.Get(); ok {
		// The stop date is exclusive, UNTIL is inclusive.
		option.Until = stop.At(0, 0, start.Location()).Add(-time.Second)
	}

	return rrule.NewRRule(option)
}

func selectedWeekdays(days []string) ([]rrule.Weekday, error) {
	byDay := make([]rrule.Weekday, 0, len(days))
	for _, day := range days {
		weekday, ok := weekdays[day]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", day)
		}
		byDay = append(byDay, weekday)
	}
	return byDay, nil
}

// parseYearlyKey splits a "Jan 15" style selector into its month and day.
func parseYearlyKey(key string) (int, int, error) {
	parts := strings.SplitN(key, " ", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid yearly selector %q", key)
	}
	month, err := time.Parse("Jan", parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid yearly selector %q", key)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid yearly selector %q", key)
	}
	return int(month.Month()), day, nil
}
