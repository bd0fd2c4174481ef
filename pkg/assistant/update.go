package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daybook/daybook/pkg/event"
	"github.com/daybook/daybook/pkg/habit"
	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/daybook/daybook/pkg/reschedule"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

func (s *ServiceImpl) UpdateEvent(ctx context.Context, input UpdateEventInput) (Result, error) {
	loc, err := sessionLocation(ctx)
	if err != nil {
		return Result{}, err
	}

	change, err := changeFromUpdate(input)
	if err != nil {
		return Result{Reply: err.Error()}, nil
	}

	currentDate, err := optionalDate(input.CurrentStartDate)
	if err != nil {
		return reply("Sorry, I couldn't process that update request."), nil
	}

	matched, result, err := s.updateHabitOccurrence(ctx, input, change, currentDate, loc)
	if err != nil || matched {
		return result, err
	}

	return s.updateStandaloneEvent(ctx, input, change, currentDate, loc)
}

// updateHabitOccurrence tries to resolve the update against a recurring
// event. The bool result reports whether the request was fully handled here;
// when false the caller falls through to the standalone events.
func (s *ServiceImpl) updateHabitOccurrence(ctx context.Context, input UpdateEventInput, change reschedule.Change, currentDate mo.Option[recurrence.Date], loc *time.Location) (bool, Result, error) {
	habits, err := s.habits.FindByTitle(ctx, input.CurrentTitle)
	if err != nil {
		return true, Result{}, err
	}
	if len(habits) == 0 {
		return false, Result{}, nil
	}

	date, hasDate := currentDate.Get()
	if !hasDate {
		return true, reply("Cannot update event '%s' without a start date and time because it is a recurring event. Please provide the start date and time to identify the specific occurrence to update.", input.CurrentTitle), nil
	}

	matches := matchingHabits(habits, date, input.CurrentStartTime)
	if len(matches) > 1 {
		if hasValue(input.CurrentStartTime) {
			return true, reply("Unable to update because I found %d recurring events with title '%s' matching the provided start date and time.", len(matches), input.CurrentTitle), nil
		}
		return true, reply("Unable to update because I found %d recurring events with title '%s' matching the provided start date. Please provide the start time as well to identify the specific occurrence.", len(matches), input.CurrentTitle), nil
	}
	if len(matches) == 0 {
		log.Infof("No occurrence of a recurring event '%s' on %s, checking saved events", input.CurrentTitle, date)
		return false, Result{}, nil
	}

	cfg := matches[0]
	habitLoc, err := cfg.StartTime.Location()
	if err != nil {
		return true, Result{}, err
	}
	currentStart := date.At(cfg.StartTime.Hour, cfg.StartTime.Minute, habitLoc)
	currentEnd := currentStart.Add(time.Duration(cfg.Length) * time.Minute)

	allDay, err := reschedule.ResolveAllDay(cfg.AllDay, mo.PointerToOption(input.AllDay), change)
	if err != nil {
		return true, Result{Reply: err.Error()}, nil
	}
	newStart, err := reschedule.ResolveStart(currentStart, change)
	if err != nil {
		return true, Result{Reply: err.Error()}, nil
	}
	newEnd, err := reschedule.ResolveEnd(cfg.Length, currentStart, currentEnd, change)
	if err != nil {
		return true, Result{Reply: err.Error()}, nil
	}

	switch {
	case input.ThisEventOnly:
		if err := s.habits.AddException(ctx, cfg.ID, date); err != nil {
			return true, Result{}, err
		}
		_, err := s.events.Create(ctx, detachedEvent(cfg, input, newStart, newEnd, allDay))
		if err != nil {
			return true, Result{}, err
		}
		return true, reply("Successfully updated only the occurrence on %s for recurring event '%s'.", spokenDateTime(currentStart), cfg.Name), nil

	case input.ThisAndFutureEvents:
		successor, err := successorFrom(cfg, input, newStart, allDay, loc.String(), nil)
		if err != nil {
			return true, Result{Reply: err.Error()}, nil
		}
		successor.Schedule.CreationDate = recurrence.DateOf(newStart.In(habitLoc))
		_, err = s.habits.SplitFrom(ctx, cfg.ID, date, successor)
		if err != nil {
			return true, Result{}, err
		}
		return true, reply("Successfully updated this and future occurrences from %s for recurring event '%s'.", spokenDateTime(currentStart), cfg.Name), nil

	default:
		return true, reply("Do you want to update only the occurrence on %s? Or do you want to update this event and all future occurrences?", spokenDateTime(currentStart)), nil
	}
}

func (s *ServiceImpl) updateStandaloneEvent(ctx context.Context, input UpdateEventInput, change reschedule.Change, currentDate mo.Option[recurrence.Date], loc *time.Location) (Result, error) {
	target, result, found, err := s.findStandaloneTarget(ctx, input.CurrentTitle, currentDate, input.CurrentStartTime, loc, "update")
	if err != nil || !found {
		return result, err
	}

	currentLength := int(target.Length().Minutes())
	allDay, err := reschedule.ResolveAllDay(target.AllDay, mo.PointerToOption(input.AllDay), change)
	if err != nil {
		return Result{Reply: err.Error()}, nil
	}
	newStart, err := reschedule.ResolveStart(target.Start, change)
	if err != nil {
		return Result{Reply: err.Error()}, nil
	}
	newEnd, err := reschedule.ResolveEnd(currentLength, target.Start, target.End, change)
	if err != nil {
		return Result{Reply: err.Error()}, nil
	}

	if habitID, detached := target.SourceHabitID.Get(); detached {
		switch {
		case input.ThisEventOnly:
			// fall through to the plain update below
		case input.ThisAndFutureEvents:
			cfg, err := s.habits.Get(ctx, habitID)
			if errors.Is(err, habit.ErrHabitNotFound) {
				return reply("Could not find the recurring event config in the database for title '%s'.", input.CurrentTitle), nil
			}
			if err != nil {
				return Result{}, err
			}
			successor, err := successorFrom(cfg, input, newStart, allDay, loc.String(), cfg.Schedule.ExceptionDates)
			if err != nil {
				return Result{Reply: err.Error()}, nil
			}
			successor.Schedule.CreationDate = recurrence.DateOf(newStart.In(loc))
			_, err = s.habits.SplitFrom(ctx, cfg.ID, recurrence.DateOf(target.Start.In(loc)), successor)
			if err != nil {
				return Result{}, err
			}
			updated := applyEventUpdate(target, input, newStart, newEnd, allDay)
			if _, err := s.events.Update(ctx, updated); err != nil {
				return Result{}, err
			}
			return reply("Successfully updated this and future occurrences from %s for recurring event '%s'.", spokenDateTime(target.Start.In(loc)), input.CurrentTitle), nil
		default:
			return reply("Do you want to update only the occurrence on %s? Or do you want to update this event and all future occurrences?", spokenDateTime(target.Start.In(loc))), nil
		}

		updated := applyEventUpdate(target, input, newStart, newEnd, allDay)
		if _, err := s.events.Update(ctx, updated); err != nil {
			return Result{}, err
		}
		return reply("Successfully updated only the occurrence on %s for recurring event '%s'.", spokenDateTime(target.Start.In(loc)), input.CurrentTitle), nil
	}

	updated := applyEventUpdate(target, input, newStart, newEnd, allDay)
	if _, err := s.events.Update(ctx, updated); err != nil {
		return Result{}, err
	}
	return reply("Successfully updated the event '%s'.", input.CurrentTitle), nil
}

// findStandaloneTarget narrows the stored events matching the title down to a
// single one using the provided date and time. When no unique target can be
// picked, the returned Result already carries the message or clarification
// question to hand back, and found is false.
func (s *ServiceImpl) findStandaloneTarget(ctx context.Context, title string, currentDate mo.Option[recurrence.Date], currentTime *string, loc *time.Location, action string) (event.Event, Result, bool, error) {
	candidates, err := s.events.FindByTitle(ctx, title)
	if err != nil {
		return event.Event{}, Result{}, false, err
	}

	date, hasDate := currentDate.Get()
	today := recurrence.DateOf(s.clock.Now().In(loc))

	var hits []event.Event
	switch {
	case hasDate && hasValue(currentTime):
		exact, err := exactStart(date, *currentTime, loc)
		if err != nil {
			return event.Event{}, reply("Sorry, I couldn't process that %s request.", action), false, nil
		}
		for _, e := range candidates {
			if e.Start.Equal(exact) {
				hits = append(hits, e)
			}
		}
		if len(candidates) > 0 && len(hits) == 0 {
			return event.Event{}, reply("found multiple events with title '%s' but none match the provided start date and time %s.", title, exact.Format(time.RFC3339)), false, nil
		}
	case hasDate:
		dayStart := date.At(0, 0, loc)
		dayEnd := date.AddDays(1).At(0, 0, loc)
		for _, e := range candidates {
			if !e.Start.Before(dayStart) && e.Start.Before(dayEnd) {
				hits = append(hits, e)
			}
		}
	case hasValue(currentTime):
		exact, err := exactStart(today, *currentTime, loc)
		if err != nil {
			return event.Event{}, reply("Sorry, I couldn't process that %s request.", action), false, nil
		}
		for _, e := range candidates {
			if e.Start.Equal(exact) {
				hits = append(hits, e)
			}
		}
		if len(candidates) > 0 && len(hits) == 0 {
			return event.Event{}, reply("found multiple events with title '%s' but none match the provided start time %s on today's date.", title, *currentTime), false, nil
		}
	default:
		hits = candidates
	}

	if len(hits) == 0 {
		message := fmt.Sprintf("No events found matching title '%s'", title)
		if hasDate {
			message += fmt.Sprintf(" and start date '%s'", date)
		}
		if hasValue(currentTime) {
			message += fmt.Sprintf(" and start time '%s'.", *currentTime)
		}
		return event.Event{}, Result{Reply: message}, false, nil
	}
	if len(hits) == 1 || hasValue(currentTime) {
		return hits[0], Result{}, true, nil
	}

	options := make([]string, 0, len(hits))
	for _, e := range hits {
		options = append(options, "on "+e.Start.In(loc).Format(time.RFC3339))
	}
	if hasDate {
		return event.Event{}, reply("found %d matches for '%s' on date '%s': %s. Please provide the start time as well to identify the specific event to %s.", len(hits), title, date, strings.Join(options, ", "), action), false, nil
	}
	return event.Event{}, reply("Found %d matches for '%s': %s. Which one should I %s?", len(hits), title, strings.Join(options, ", "), action), false, nil
}

func exactStart(date recurrence.Date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return date.At(t.Hour(), t.Minute(), loc), nil
}

func changeFromUpdate(input UpdateEventInput) (reschedule.Change, error) {
	startDate, err := optionalDate(input.NewStartDate)
	if err != nil {
		return reschedule.Change{}, err
	}
	endDate, err := optionalDate(input.NewEndDate)
	if err != nil {
		return reschedule.Change{}, err
	}
	return reschedule.Change{
		StartDate:     startDate,
		StartTime:     optionalString(input.NewStartTime),
		EndDate:       endDate,
		EndTime:       optionalString(input.NewEndTime),
		LengthMinutes: mo.PointerToOption(input.NewLengthMinutes),
	}, nil
}

// matchingHabits keeps the habits whose schedule has an occurrence on the
// given date, and whose start matches the given time when one was provided.
func matchingHabits(habits []habit.Habit, date recurrence.Date, clock *string) []habit.Habit {
	var matches []habit.Habit
	for _, cfg := range habits {
		if !cfg.Schedule.OccursOn(date) {
			continue
		}
		if hasValue(clock) {
			if fmt.Sprintf("%02d:%02d", cfg.StartTime.Hour, cfg.StartTime.Minute) != *clock {
				continue
			}
		}
		matches = append(matches, cfg)
	}
	return matches
}

func override[T any](p *T, current T) T {
	if p != nil {
		return *p
	}
	return current
}

func overrideOption(p *string, current mo.Option[string]) mo.Option[string] {
	if p != nil {
		return mo.Some(*p)
	}
	return current
}

// detachedEvent materializes a single edited occurrence of a recurring event
// as a standalone event linked back to its habit.
func detachedEvent(cfg habit.Habit, input UpdateEventInput, newStart, newEnd time.Time, allDay bool) event.Event {
	notifications := make([]event.Notification, 0, len(cfg.Notifications))
	for _, n := range cfg.Notifications {
		notifications = append(notifications, event.Notification(n))
	}
	return event.Event{
		Title:         override(input.NewTitle, cfg.Name),
		Start:         newStart,
		End:           newEnd,
		AllDay:        allDay,
		EventType:     override(input.EventType, cfg.EventType),
		Priority:      overrideOption(input.Priority, cfg.Priority),
		Fixed:         override(input.Fixed, cfg.Fixed),
		Content:       overrideOption(input.Content, cfg.Content),
		Notifications: notifications,
		SourceHabitID: mo.Some(cfg.ID),
	}
}

// successorFrom builds the replacement habit for a "this and all future
// occurrences" edit. Exceptions carries the exception dates the successor
// keeps; nil starts it with a clean slate.
func successorFrom(cfg habit.Habit, input UpdateEventInput, newStart time.Time, allDay bool, timezone string, exceptions []recurrence.Date) (habit.Habit, error) {
	frequency := cfg.Schedule.Frequency
	if hasValue(input.Frequency) {
		parsed, err := recurrence.ParseFrequency(*input.Frequency)
		if err != nil {
			return habit.Habit{}, err
		}
		frequency = parsed
	}
	days := cfg.Schedule.Days
	if input.Days != nil {
		days = input.Days
	}
	length := cfg.Length
	if input.NewLengthMinutes != nil {
		length = *input.NewLengthMinutes
	}
	return habit.Habit{
		Name: override(input.NewTitle, cfg.Name),
		Schedule: recurrence.Schedule{
			Frequency:      frequency,
			Days:           days,
			ExceptionDates: exceptions,
		},
		StartTime: habit.StartTime{
			Hour:     newStart.Hour(),
			Minute:   newStart.Minute(),
			Timezone: timezone,
		},
		Length:        length,
		AllDay:        allDay,
		EventType:     override(input.EventType, cfg.EventType),
		Priority:      overrideOption(input.Priority, cfg.Priority),
		Fixed:         override(input.Fixed, cfg.Fixed),
		Content:       overrideOption(input.Content, cfg.Content),
		Notifications: cfg.Notifications,
	}, nil
}

func applyEventUpdate(current event.Event, input UpdateEventInput, newStart, newEnd time.Time, allDay bool) event.Event {
	current.Title = override(input.NewTitle, current.Title)
	current.Start = newStart
	current.End = newEnd
	current.AllDay = allDay
	current.EventType = override(input.EventType, current.EventType)
	current.Priority = overrideOption(input.Priority, current.Priority)
	current.Fixed = override(input.Fixed, current.Fixed)
	current.Content = overrideOption(input.Content, current.Content)
	return current
}
