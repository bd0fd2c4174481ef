package feed

import (
	"context"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/daybook/daybook/internal/utils"
	"github.com/daybook/daybook/pkg/event"
	"github.com/daybook/daybook/pkg/habit"
	log "github.com/sirupsen/logrus"
)

// Standalone events further out than this window are left out of the feed.
// Recurring events are carried as RRULEs and need no window at all.
const (
	feedPastWindow   = 30 * 24 * time.Hour
	feedFutureWindow = 365 * 24 * time.Hour
)

type Service interface {
	BuildCalendar(ctx context.Context) (*ics.Calendar, error)
}

type ServiceImpl struct {
	habits habit.Service
	events event.Service
	clock  utils.Clock
}

func NewService(habits habit.Service, events event.Service, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{habits: habits, events: events, clock: clock}
}

// BuildCalendar renders the user's calendar as an iCalendar feed: one
// recurring VEVENT per habit and one plain VEVENT per standalone event.
func (s *ServiceImpl) BuildCalendar(ctx context.Context) (*ics.Calendar, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//daybook//calendar feed//EN")

	habits, err := s.habits.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if err := addHabit(cal, h); err != nil {
			log.Warnf("Skipping habit %s in calendar feed: %v", h.ID, err)
		}
	}

	now := s.clock.Now()
	events, err := s.events.FindInRange(ctx, now.Add(-feedPastWindow), now.Add(feedFutureWindow))
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		addEvent(cal, e)
	}

	return cal, nil
}

func addHabit(cal *ics.Calendar, h habit.Habit) error {
	loc, err := h.StartTime.Location()
	if err != nil {
		return err
	}
	start := h.Schedule.CreationDate.At(h.StartTime.Hour, h.StartTime.Minute, loc)

	rule, err := RuleFor(h.Schedule, start)
	if err != nil {
		return err
	}

	vevent := cal.AddEvent(h.ID + "@daybook")
	vevent.SetDtStampTime(start)
	vevent.SetSummary(h.Name)
	if content, ok := h.Content.Get(); ok {
		vevent.SetDescription(content)
	}
	if h.AllDay {
		vevent.SetAllDayStartAt(start)
		vevent.SetAllDayEndAt(start.Add(24 * time.Hour))
	} else {
		vevent.SetStartAt(start)
		vevent.SetEndAt(start.Add(time.Duration(h.Length) * time.Minute))
	}
	vevent.AddProperty(ics.ComponentPropertyRrule, rule.String())
	for _, d := range h.Schedule.ExceptionDates {
		exdate := d.At(h.StartTime.Hour, h.StartTime.Minute, loc)
		vevent.AddProperty(ics.ComponentPropertyExdate, exdate.UTC().Format("20060102T150405Z"))
	}
	return nil
}

func addEvent(cal *ics.Calendar, e event.Event) {
	vevent := cal.AddEvent(e.ID + "@daybook")
	vevent.SetDtStampTime(e.Start)
	vevent.SetSummary(e.Title)
	if content, ok := e.Content.Get(); ok {
		vevent.SetDescription(content)
	}
	if e.AllDay {
		vevent.SetAllDayStartAt(e.Start)
		vevent.SetAllDayEndAt(e.End)
	} else {
		vevent.SetStartAt(e.Start)
		vevent.SetEndAt(e.End)
	}
	if habitID, ok := e.SourceHabitID.Get(); ok {
		vevent.AddProperty(ics.ComponentProperty("X-DAYBOOK-SOURCE-HABIT"), habitID)
	}
}
