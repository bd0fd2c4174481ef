package recurrence

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Kind identifies the cadence of a repeating schedule.
type Kind int

const (
	Daily Kind = iota + 1
	Weekly
	MonthlyByDay
	// MonthlyByWeekday repeats on the Ordinal-th occurrence of the selected
	// weekday(s) within the month, e.g. "1M2" with days ["Mon"] is the second
	// Monday of every month.
	MonthlyByWeekday
	Yearly
)

var ErrInvalidFrequency = errors.New("invalid frequency format (expected like 1D, 2W, 1M, 1M3, 1Y)")

var frequencyRe = regexp.MustCompile(`^(\d+)(D|W|M|Y)(\d+)?$`)

// Frequency is the parsed form of the compact frequency grammar
// ("1D", "2W", "1M", "1M3", "1Y"). Configs are parsed once on load; the
// predicate never re-parses strings.
type Frequency struct {
	Kind     Kind
	Interval int
	// Ordinal is only meaningful for MonthlyByWeekday.
	Ordinal int
}

// ParseFrequency parses a frequency code. Validation happens here, at config
// write/load time; OccursOn assumes a well-formed Frequency.
func ParseFrequency(code string) (Frequency, error) {
	m := frequencyRe.FindStringSubmatch(code)
	if m == nil {
		return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, code)
	}
	interval, err := strconv.Atoi(m[1])
	if err != nil || interval < 1 {
		return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, code)
	}
	if m[3] != "" && m[2] != "M" {
		return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, code)
	}
	switch m[2] {
	case "D":
		return Frequency{Kind: Daily, Interval: interval}, nil
	case "W":
		return Frequency{Kind: Weekly, Interval: interval}, nil
	case "Y":
		return Frequency{Kind: Yearly, Interval: interval}, nil
	case "M":
		if m[3] == "" {
			return Frequency{Kind: MonthlyByDay, Interval: interval}, nil
		}
		ordinal, err := strconv.Atoi(m[3])
		if err != nil || ordinal < 1 || ordinal > 5 {
			return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, code)
		}
		return Frequency{Kind: MonthlyByWeekday, Interval: interval, Ordinal: ordinal}, nil
	}
	return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, code)
}

// String renders the frequency back into its compact code.
func (f Frequency) String() string {
	switch f.Kind {
	case Daily:
		return fmt.Sprintf("%dD", f.Interval)
	case Weekly:
		return fmt.Sprintf("%dW", f.Interval)
	case MonthlyByDay:
		return fmt.Sprintf("%dM", f.Interval)
	case MonthlyByWeekday:
		return fmt.Sprintf("%dM%d", f.Interval, f.Ordinal)
	case Yearly:
		return fmt.Sprintf("%dY", f.Interval)
	}
	return ""
}

func (f Frequency) IsZero() bool {
	return f.Kind == 0
}
