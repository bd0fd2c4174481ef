package event

import (
	"time"

	"github.com/samber/mo"
)

// Event is a standalone calendar entry. Detaching a single occurrence of a
// habit also produces one, with SourceHabitID pointing back at the habit.
type Event struct {
	ID            string
	UserID        int
	Title         string
	Start         time.Time
	End           time.Time
	AllDay        bool
	EventType     string
	Priority      mo.Option[string]
	Fixed         bool
	Done          bool
	Content       mo.Option[string]
	Notifications []Notification
	SourceHabitID mo.Option[string]
}

type Notification struct {
	ID         string `json:"id"`
	TimeBefore int    `json:"timeBefore"`
	TimeUnit   string `json:"timeUnit"`
}

func (e Event) Length() time.Duration {
	return e.End.Sub(e.Start)
}
