package assistant

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/daybook/daybook/internal/utils"
	"github.com/daybook/daybook/pkg/event"
	"github.com/daybook/daybook/pkg/habit"
	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/google/uuid"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

type ServiceImpl struct {
	habits habit.Service
	events event.Service
	clock  utils.Clock
}

func NewService(habits habit.Service, events event.Service, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{habits: habits, events: events, clock: clock}
}

const defaultLengthMinutes = 15

func timeUnitCode(unit string) string {
	switch unit {
	case "weekly":
		return "W"
	case "monthly":
		return "M"
	case "yearly":
		return "Y"
	default:
		return "D"
	}
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, input CreateEventInput) (Result, error) {
	loc, err := sessionLocation(ctx)
	if err != nil {
		return Result{}, err
	}

	length := defaultLengthMinutes
	if input.LengthMinutes != nil {
		length = *input.LengthMinutes
	}

	var missing []string
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if input.StartDateTime == "" {
		missing = append(missing, "start_datetime")
	}
	if length == 0 {
		missing = append(missing, "length_minutes")
	}
	if len(missing) > 0 {
		return reply("Missing required event details: %s.", strings.Join(missing, ", ")), nil
	}

	start, err := parseNaiveDateTime(input.StartDateTime, loc)
	if err != nil {
		return reply("Failed to create event: %v", err), nil
	}

	eventType := input.EventType
	if eventType == "" {
		eventType = "personal"
	}

	if input.Recurrence != nil {
		frequency, err := recurrence.ParseFrequency(
			strconv.Itoa(input.Recurrence.Frequency) + timeUnitCode(input.Recurrence.TimeUnit))
		if err != nil {
			return reply("Failed to create event: %v", err), nil
		}
		stopDate, err := optionalDate(input.Recurrence.StopDate)
		if err != nil {
			return reply("Failed to create event: %v", err), nil
		}
		created, err := s.habits.Create(ctx, habit.Habit{
			Name: input.Title,
			Schedule: recurrence.Schedule{
				CreationDate: recurrence.DateOf(s.clock.Now().In(loc)),
				Frequency:    frequency,
				Days:         input.Recurrence.Days,
				StopDate:     stopDate,
			},
			StartTime: habit.StartTime{
				Hour:     start.Hour(),
				Minute:   start.Minute(),
				Timezone: loc.String(),
			},
			Length:        length,
			AllDay:        input.AllDay,
			EventType:     eventType,
			Priority:      mo.PointerToOption(input.Priority),
			Fixed:         input.Fixed,
			Notifications: habitNotifications(input.Notifications),
		})
		if err != nil {
			return Result{}, err
		}
		log.Infof("Created recurring event %s", created.ID)
		return reply("Recurring event '%s' created.", input.Title), nil
	}

	created, err := s.events.Create(ctx, event.Event{
		Title:         input.Title,
		Start:         start,
		End:           start.Add(time.Duration(length) * time.Minute),
		AllDay:        input.AllDay,
		EventType:     eventType,
		Priority:      mo.PointerToOption(input.Priority),
		Fixed:         input.Fixed,
		Notifications: eventNotifications(input.Notifications),
	})
	if err != nil {
		return Result{}, err
	}
	log.Infof("Created event %s", created.ID)
	return reply("Event '%s' created.", input.Title), nil
}

func (s *ServiceImpl) ReadEvents(ctx context.Context, input ReadEventsInput) (Result, error) {
	loc, err := sessionLocation(ctx)
	if err != nil {
		return Result{}, err
	}
	today := recurrence.DateOf(s.clock.Now().In(loc))

	startDateOpt, err := optionalDate(input.StartDate)
	if err != nil {
		return reply("Sorry, I couldn't process that read request."), nil
	}
	endDateOpt, err := optionalDate(input.EndDate)
	if err != nil {
		return reply("Sorry, I couldn't process that read request."), nil
	}
	startDate := startDateOpt.OrElse(today)
	endDate := endDateOpt.OrElse(startDate)

	timeFiltered := hasValue(input.StartTime) || hasValue(input.EndTime)
	startClock, err := parseOptionalClock(input.StartTime, "00:00")
	if err != nil {
		return reply("Sorry, I couldn't process that read request."), nil
	}
	defaultEnd := "23:59"
	if hasValue(input.StartTime) {
		defaultEnd = *input.StartTime
	}
	endClock, err := parseOptionalClock(input.EndTime, defaultEnd)
	if err != nil {
		return reply("Sorry, I couldn't process that read request."), nil
	}

	if endDate.Before(startDate) {
		return reply("End date must be on or after start date."), nil
	}
	if startDate == endDate && beforeClock(endClock, startClock) {
		return reply("End time must be on or after start time."), nil
	}

	windowStart := startDate.At(startClock.Hour(), startClock.Minute(), loc)
	windowEnd := endDate.At(endClock.Hour(), endClock.Minute(), loc)
	if !timeFiltered {
		windowEnd = windowEnd.Add(59 * time.Second)
	}

	var summaries []EventSummary

	stored, err := s.events.FindInRange(ctx, windowStart, windowEnd.Add(time.Second))
	if err != nil {
		return Result{}, err
	}
	for _, e := range stored {
		if e.Start.Before(windowStart) || e.Start.After(windowEnd) {
			continue
		}
		summaries = append(summaries, EventSummary{
			Title: e.Title,
			Start: e.Start.In(loc),
			End:   e.End.In(loc),
		})
	}

	occurrences, err := s.habits.OccurrencesBetween(ctx, startDate, endDate)
	if err != nil {
		return Result{}, err
	}
	for _, occurrence := range occurrences {
		local := occurrence.Start.In(loc)
		localDate := recurrence.DateOf(local)
		if localDate.Before(startDate) || localDate.After(endDate) {
			continue
		}
		if timeFiltered {
			clock := time.Date(0, 1, 1, local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
			if beforeClock(clock, startClock) || beforeClock(endClock, clock) {
				continue
			}
		}
		summaries = append(summaries, EventSummary{
			Title: occurrence.Title,
			Start: local,
			End:   occurrence.End.In(loc),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Start.Before(summaries[j].Start)
	})

	if len(summaries) == 0 {
		return Result{Reply: "No events found for that time range.", Events: []EventSummary{}}, nil
	}
	return Result{
		Reply:  "Found " + strconv.Itoa(len(summaries)) + " events.",
		Events: summaries,
	}, nil
}

// parseNaiveDateTime parses a timestamp without zone information and pins it
// to the session timezone.
func parseNaiveDateTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", s, loc)
}

// parseOptionalClock parses HH:MM, falling back to the given default. The
// result carries only the hour and minute.
func parseOptionalClock(s *string, fallback string) (time.Time, error) {
	value := fallback
	if hasValue(s) {
		value = *s
	}
	return time.Parse("15:04", value)
}

func beforeClock(a, b time.Time) bool {
	if a.Hour() != b.Hour() {
		return a.Hour() < b.Hour()
	}
	if a.Minute() != b.Minute() {
		return a.Minute() < b.Minute()
	}
	return a.Second() < b.Second()
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}

func habitNotifications(inputs []NotificationInput) []habit.Notification {
	notifications := make([]habit.Notification, 0, len(inputs))
	for _, n := range inputs {
		if n.TimeUnit == "" {
			continue
		}
		notifications = append(notifications, habit.Notification{
			ID:         uuid.New().String(),
			TimeBefore: n.TimeBefore,
			TimeUnit:   n.TimeUnit,
		})
	}
	return notifications
}

func eventNotifications(inputs []NotificationInput) []event.Notification {
	notifications := make([]event.Notification, 0, len(inputs))
	for _, n := range inputs {
		if n.TimeUnit == "" {
			continue
		}
		notifications = append(notifications, event.Notification{
			ID:         uuid.New().String(),
			TimeBefore: n.TimeBefore,
			TimeUnit:   n.TimeUnit,
		})
	}
	return notifications
}
