package habit

import (
	"fmt"
	"time"

	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/samber/mo"
)

// Habit is a repeating event template. Occurrences are generated on the fly
// from its Schedule; individually edited or deleted occurrences become
// exception dates plus standalone events.
type Habit struct {
	ID            string
	UserID        int
	Name          string
	Schedule      recurrence.Schedule
	StartTime     StartTime
	Length        int // minutes
	AllDay        bool
	EventType     string
	Priority      mo.Option[string]
	Fixed         bool
	Content       mo.Option[string]
	Notifications []Notification
	// PrevVersionID links a habit created by a "this and all future
	// occurrences" edit back to the habit it superseded.
	PrevVersionID mo.Option[string]
}

// StartTime is the wall-clock start of every occurrence, evaluated in the
// habit's own timezone regardless of the session timezone.
type StartTime struct {
	Hour     int
	Minute   int
	Timezone string
}

func (s StartTime) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("could not load location for timezone %s", s.Timezone)
	}
	return loc, nil
}

type Notification struct {
	ID         string `json:"id"`
	TimeBefore int    `json:"timeBefore"`
	TimeUnit   string `json:"timeUnit"`
}

// Occurrence is a single materialized instance of a habit on one date. It is
// virtual: not persisted unless detached by a "this occurrence only" edit.
type Occurrence struct {
	HabitID string
	Title   string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

// OccurrenceOn materializes the occurrence of h on the given date. It does
// not check the schedule; callers filter with Schedule.OccursOn first.
func (h Habit) OccurrenceOn(d recurrence.Date) (Occurrence, error) {
	loc, err := h.StartTime.Location()
	if err != nil {
		return Occurrence{}, err
	}
	start := d.At(h.StartTime.Hour, h.StartTime.Minute, loc)
	return Occurrence{
		HabitID: h.ID,
		Title:   h.Name,
		Start:   start,
		End:     start.Add(time.Duration(h.Length) * time.Minute),
		AllDay:  h.AllDay,
	}, nil
}
