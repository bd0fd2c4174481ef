package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/daybook/daybook/pkg/user"
	"github.com/samber/mo"
)

// Result is what a tool invocation hands back to the conversation. Reply is
// always a complete sentence the assistant can speak verbatim: a confirmation,
// a clarification question, or an explanation of what went wrong.
type Result struct {
	Reply  string         `json:"reply"`
	Events []EventSummary `json:"events,omitempty"`
}

type EventSummary struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Service exposes the calendar tools invoked from the conversation layer.
// Domain outcomes, including clarification questions, arrive inside the
// Result; the error return is reserved for infrastructure failures.
type Service interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (Result, error)
	ReadEvents(ctx context.Context, input ReadEventsInput) (Result, error)
	UpdateEvent(ctx context.Context, input UpdateEventInput) (Result, error)
	DeleteEvent(ctx context.Context, input DeleteEventInput) (Result, error)
}

type CreateEventInput struct {
	Title         string              `json:"title"`
	StartDateTime string              `json:"startDateTime"`
	LengthMinutes *int                `json:"lengthMinutes,omitempty"`
	AllDay        bool                `json:"allDay,omitempty"`
	EventType     string              `json:"eventType,omitempty"`
	Priority      *string             `json:"priority,omitempty"`
	Fixed         bool                `json:"fixed,omitempty"`
	Recurrence    *RecurrenceInput    `json:"recurrence,omitempty"`
	Notifications []NotificationInput `json:"notifications,omitempty"`
}

type RecurrenceInput struct {
	Frequency int      `json:"frequency"`
	TimeUnit  string   `json:"timeUnit"`
	Days      []string `json:"days,omitempty"`
	StopDate  *string  `json:"stopDate,omitempty"`
}

type NotificationInput struct {
	TimeBefore int    `json:"timeBefore"`
	TimeUnit   string `json:"timeUnit"`
}

type ReadEventsInput struct {
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
}

type UpdateEventInput struct {
	CurrentTitle        string   `json:"currentTitle"`
	CurrentStartDate    *string  `json:"currentStartDate,omitempty"`
	CurrentStartTime    *string  `json:"currentStartTime,omitempty"`
	ThisEventOnly       bool     `json:"thisEventOnly,omitempty"`
	ThisAndFutureEvents bool     `json:"thisAndFutureEvents,omitempty"`
	NewTitle            *string  `json:"newTitle,omitempty"`
	NewStartDate        *string  `json:"newStartDate,omitempty"`
	NewStartTime        *string  `json:"newStartTime,omitempty"`
	NewEndDate          *string  `json:"newEndDate,omitempty"`
	NewEndTime          *string  `json:"newEndTime,omitempty"`
	NewLengthMinutes    *int     `json:"newLengthMinutes,omitempty"`
	AllDay              *bool    `json:"allDay,omitempty"`
	EventType           *string  `json:"eventType,omitempty"`
	Priority            *string  `json:"priority,omitempty"`
	Fixed               *bool    `json:"fixed,omitempty"`
	Content             *string  `json:"content,omitempty"`
	Frequency           *string  `json:"frequency,omitempty"`
	Days                []string `json:"days,omitempty"`
}

type DeleteEventInput struct {
	Title               string  `json:"title"`
	StartDate           *string `json:"startDate,omitempty"`
	StartTime           *string `json:"startTime,omitempty"`
	ThisEventOnly       bool    `json:"thisEventOnly,omitempty"`
	ThisAndFutureEvents bool    `json:"thisAndFutureEvents,omitempty"`
}

func reply(format string, args ...any) Result {
	return Result{Reply: fmt.Sprintf(format, args...)}
}

// sessionLocation is the timezone all dates and times in the conversation are
// interpreted in. It comes from the user's settings, not from the habit being
// edited.
func sessionLocation(ctx context.Context) (*time.Location, error) {
	return user.CurrentLocation(ctx)
}

func optionalDate(s *string) (mo.Option[recurrence.Date], error) {
	if s == nil || *s == "" {
		return mo.None[recurrence.Date](), nil
	}
	d, err := recurrence.ParseDate(*s)
	if err != nil {
		return mo.None[recurrence.Date](), err
	}
	return mo.Some(d), nil
}

func optionalString(s *string) mo.Option[string] {
	if s == nil || *s == "" {
		return mo.None[string]()
	}
	return mo.Some(*s)
}

// spokenDate renders a date the way the assistant reads it back, with an
// optional time suffix: "Mar 10, 2025 at 09:00".
func spokenDate(d recurrence.Date, clock string) string {
	formatted := d.Time(time.UTC).Format("Jan 02, 2006")
	if clock != "" {
		return formatted + " at " + clock
	}
	return formatted
}

func spokenDateTime(t time.Time) string {
	return t.Format("01/02/2006 03:04 PM")
}
