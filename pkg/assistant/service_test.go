package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/daybook/daybook/internal/event_bus"
	"github.com/daybook/daybook/internal/utils"
	"github.com/daybook/daybook/pkg/event"
	"github.com/daybook/daybook/pkg/habit"
	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/daybook/daybook/pkg/user"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var warsaw = mustLocation("Europe/Warsaw")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type fixture struct {
	ctx     context.Context
	habits  habit.Service
	events  event.Service
	service *ServiceImpl
	clock   *utils.MockClock
}

func newFixture() fixture {
	ctx := user.WithUser(context.Background(), user.User{
		Id:       1,
		Uid:      "user-1",
		Settings: user.Settings{Timezone: "Europe/Warsaw"},
	})
	habits := habit.NewService(habit.NewStubHabitRepository(), event_bus.NewEventBus())
	events := event.NewService(event.NewStubEventRepository(), event_bus.NewEventBus())
	clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 10, 12, 0, 0, 0, warsaw)}
	return fixture{
		ctx:     ctx,
		habits:  habits,
		events:  events,
		service: NewService(habits, events, clock),
		clock:   clock,
	}
}

func (f fixture) createHabit(t *testing.T, name string, frequency string, days []string) habit.Habit {
	t.Helper()
	created, err := f.habits.Create(f.ctx, habit.Habit{
		Name: name,
		Schedule: recurrence.Schedule{
			CreationDate: recurrence.NewDate(2025, 3, 3),
			Frequency:    mustFrequency(frequency),
			Days:         days,
		},
		StartTime: habit.StartTime{Hour: 9, Minute: 0, Timezone: "Europe/Warsaw"},
		Length:    60,
		EventType: "personal",
	})
	require.NoError(t, err)
	return created
}

func mustFrequency(code string) recurrence.Frequency {
	f, err := recurrence.ParseFrequency(code)
	if err != nil {
		panic(err)
	}
	return f
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestCreateEventTool(t *testing.T) {
	t.Run("should report missing fields", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.CreateEvent(f.ctx, CreateEventInput{})

		require.NoError(t, err)
		assert.Equal(t, "Missing required event details: title, start_datetime.", result.Reply)
	})

	t.Run("should treat an explicit zero length as missing", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.CreateEvent(f.ctx, CreateEventInput{
			Title:         "Dentist",
			StartDateTime: "2025-03-12T09:00",
			LengthMinutes: intPtr(0),
		})

		require.NoError(t, err)
		assert.Equal(t, "Missing required event details: length_minutes.", result.Reply)
	})

	t.Run("should create a standalone event with the default length", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.CreateEvent(f.ctx, CreateEventInput{
			Title:         "Dentist",
			StartDateTime: "2025-03-12T09:00",
		})

		require.NoError(t, err)
		assert.Equal(t, "Event 'Dentist' created.", result.Reply)

		events, err := f.events.FindByTitle(f.ctx, "Dentist")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, events[0].Start.Equal(time.Date(2025, 3, 12, 9, 0, 0, 0, warsaw)))
		assert.True(t, events[0].End.Equal(time.Date(2025, 3, 12, 9, 15, 0, 0, warsaw)))
		assert.Equal(t, "personal", events[0].EventType)
	})

	t.Run("should create a recurring event anchored on today", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.CreateEvent(f.ctx, CreateEventInput{
			Title:         "Weekly review",
			StartDateTime: "2025-03-10T18:00",
			LengthMinutes: intPtr(30),
			Recurrence: &RecurrenceInput{
				Frequency: 1,
				TimeUnit:  "weekly",
				Days:      []string{"Mon"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Recurring event 'Weekly review' created.", result.Reply)

		habits, err := f.habits.FindByTitle(f.ctx, "Weekly review")
		require.NoError(t, err)
		require.Len(t, habits, 1)
		assert.Equal(t, "1W", habits[0].Schedule.Frequency.String())
		assert.Equal(t, recurrence.NewDate(2025, 3, 10), habits[0].Schedule.CreationDate)
		assert.Equal(t, 18, habits[0].StartTime.Hour)
		assert.Equal(t, "Europe/Warsaw", habits[0].StartTime.Timezone)
	})

	t.Run("should reject an invalid recurrence", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.CreateEvent(f.ctx, CreateEventInput{
			Title:         "Broken",
			StartDateTime: "2025-03-10T18:00",
			Recurrence:    &RecurrenceInput{Frequency: 0, TimeUnit: "weekly"},
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "Failed to create event")
	})
}

func TestReadEventsTool(t *testing.T) {
	t.Run("should default to today", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.ReadEvents(f.ctx, ReadEventsInput{})

		require.NoError(t, err)
		assert.Equal(t, "Found 1 events.", result.Reply)
		require.Len(t, result.Events, 1)
		assert.Equal(t, "Morning run", result.Events[0].Title)
		assert.True(t, result.Events[0].Start.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw)))
	})

	t.Run("should merge stored events and habit occurrences sorted by start", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)
		_, err := f.events.Create(f.ctx, event.Event{
			Title: "Dentist",
			Start: time.Date(2025, 3, 10, 8, 0, 0, 0, warsaw),
			End:   time.Date(2025, 3, 10, 8, 30, 0, 0, warsaw),
		})
		require.NoError(t, err)

		result, err := f.service.ReadEvents(f.ctx, ReadEventsInput{
			StartDate: strPtr("2025-03-10"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Found 2 events.", result.Reply)
		require.Len(t, result.Events, 2)
		assert.Equal(t, "Dentist", result.Events[0].Title)
		assert.Equal(t, "Morning run", result.Events[1].Title)
	})

	t.Run("should filter by time of day", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.ReadEvents(f.ctx, ReadEventsInput{
			StartDate: strPtr("2025-03-10"),
			StartTime: strPtr("10:00"),
			EndTime:   strPtr("12:00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "No events found for that time range.", result.Reply)
	})

	t.Run("should reject an inverted date range", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.ReadEvents(f.ctx, ReadEventsInput{
			StartDate: strPtr("2025-03-12"),
			EndDate:   strPtr("2025-03-10"),
		})

		require.NoError(t, err)
		assert.Equal(t, "End date must be on or after start date.", result.Reply)
	})

	t.Run("should reject an inverted time range on a single day", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.ReadEvents(f.ctx, ReadEventsInput{
			StartTime: strPtr("14:00"),
			EndTime:   strPtr("09:00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "End time must be on or after start time.", result.Reply)
	})
}

func TestUpdateEventToolRecurring(t *testing.T) {
	t.Run("should require a start date for a recurring event", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle: "Morning run",
			NewStartTime: strPtr("10:00"),
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "Cannot update event 'Morning run' without a start date and time")
	})

	t.Run("should ask which occurrences to update", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle:     "Morning run",
			CurrentStartDate: strPtr("2025-03-12"),
			NewStartTime:     strPtr("10:00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Do you want to update only the occurrence on 03/12/2025 09:00 AM? Or do you want to update this event and all future occurrences?", result.Reply)
	})

	t.Run("should detach a single occurrence", func(t *testing.T) {
		f := newFixture()
		created := f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle:     "Morning run",
			CurrentStartDate: strPtr("2025-03-12"),
			ThisEventOnly:    true,
			NewStartTime:     strPtr("10:00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Successfully updated only the occurrence on 03/12/2025 09:00 AM for recurring event 'Morning run'.", result.Reply)

		updated, err := f.habits.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 12)))
		assert.True(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 13)))

		detached, err := f.events.FindByTitle(f.ctx, "Morning run")
		require.NoError(t, err)
		require.Len(t, detached, 1)
		assert.True(t, detached[0].Start.Equal(time.Date(2025, 3, 12, 10, 0, 0, 0, warsaw)))
		assert.True(t, detached[0].End.Equal(time.Date(2025, 3, 12, 11, 0, 0, 0, warsaw)))
		assert.Equal(t, created.ID, detached[0].SourceHabitID.MustGet())
	})

	t.Run("should split this and future occurrences", func(t *testing.T) {
		f := newFixture()
		created := f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle:        "Morning run",
			CurrentStartDate:    strPtr("2025-03-12"),
			ThisAndFutureEvents: true,
			NewStartTime:        strPtr("07:30"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Successfully updated this and future occurrences from 03/12/2025 09:00 AM for recurring event 'Morning run'.", result.Reply)

		predecessor, err := f.habits.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, predecessor.Schedule.OccursOn(recurrence.NewDate(2025, 3, 12)))

		habits, err := f.habits.FindByTitle(f.ctx, "Morning run")
		require.NoError(t, err)
		require.Len(t, habits, 2)
		var successor habit.Habit
		for _, h := range habits {
			if h.ID != created.ID {
				successor = h
			}
		}
		assert.Equal(t, created.ID, successor.PrevVersionID.MustGet())
		assert.Equal(t, 7, successor.StartTime.Hour)
		assert.Equal(t, 30, successor.StartTime.Minute)
		assert.Equal(t, recurrence.NewDate(2025, 3, 12), successor.Schedule.CreationDate)
	})

	t.Run("should surface a contradictory delta as the reply", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle:     "Morning run",
			CurrentStartDate: strPtr("2025-03-12"),
			ThisEventOnly:    true,
			NewStartTime:     strPtr("10:00"),
			NewEndDate:       strPtr("2025-03-13"),
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "needs a new end time")
	})

	t.Run("should report ambiguous recurring matches", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle:     "Morning run",
			CurrentStartDate: strPtr("2025-03-12"),
			ThisEventOnly:    true,
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "found 2 recurring events with title 'Morning run'")
	})
}

func TestUpdateEventToolStandalone(t *testing.T) {
	t.Run("should update a plain event", func(t *testing.T) {
		f := newFixture()
		created, err := f.events.Create(f.ctx, event.Event{
			Title: "Dentist",
			Start: time.Date(2025, 3, 12, 9, 0, 0, 0, warsaw),
			End:   time.Date(2025, 3, 12, 9, 30, 0, 0, warsaw),
		})
		require.NoError(t, err)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle: "Dentist",
			NewStartDate: strPtr("2025-03-14"),
			NewTitle:     strPtr("Dentist checkup"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Successfully updated the event 'Dentist'.", result.Reply)

		updated, err := f.events.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dentist checkup", updated.Title)
		assert.True(t, updated.Start.Equal(time.Date(2025, 3, 14, 9, 0, 0, 0, warsaw)))
		assert.True(t, updated.End.Equal(time.Date(2025, 3, 14, 9, 30, 0, 0, warsaw)))
	})

	t.Run("should report when nothing matches", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle:     "Dentist",
			CurrentStartDate: strPtr("2025-03-12"),
			CurrentStartTime: strPtr("09:00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "No events found matching title 'Dentist' and start date '2025-03-12' and start time '09:00'.", result.Reply)
	})

	t.Run("should ask for a time when a date matches several events", func(t *testing.T) {
		f := newFixture()
		for _, hour := range []int{9, 14} {
			_, err := f.events.Create(f.ctx, event.Event{
				Title: "Call mom",
				Start: time.Date(2025, 3, 12, hour, 0, 0, 0, warsaw),
				End:   time.Date(2025, 3, 12, hour, 30, 0, 0, warsaw),
			})
			require.NoError(t, err)
		}

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle:     "Call mom",
			CurrentStartDate: strPtr("2025-03-12"),
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "found 2 matches for 'Call mom' on date '2025-03-12'")
		assert.Contains(t, result.Reply, "Please provide the start time as well")
	})

	t.Run("should ask which event when nothing narrows the match", func(t *testing.T) {
		f := newFixture()
		for _, day := range []int{12, 13} {
			_, err := f.events.Create(f.ctx, event.Event{
				Title: "Call mom",
				Start: time.Date(2025, 3, day, 9, 0, 0, 0, warsaw),
				End:   time.Date(2025, 3, day, 9, 30, 0, 0, warsaw),
			})
			require.NoError(t, err)
		}

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle: "Call mom",
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "Found 2 matches for 'Call mom'")
		assert.Contains(t, result.Reply, "Which one should I update?")
	})

	t.Run("should require a scope choice for a detached occurrence", func(t *testing.T) {
		f := newFixture()
		created := f.createHabit(t, "Morning run", "1D", nil)
		_, err := f.events.Create(f.ctx, event.Event{
			Title:         "Gym session",
			Start:         time.Date(2025, 3, 12, 10, 0, 0, 0, warsaw),
			End:           time.Date(2025, 3, 12, 11, 0, 0, 0, warsaw),
			SourceHabitID: mo.Some(created.ID),
		})
		require.NoError(t, err)

		result, err := f.service.UpdateEvent(f.ctx, UpdateEventInput{
			CurrentTitle: "Gym session",
			NewStartTime: strPtr("12:00"),
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "Do you want to update only the occurrence on")
	})
}

func TestDeleteEventToolRecurring(t *testing.T) {
	t.Run("should require a start date for a recurring event", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.DeleteEvent(f.ctx, DeleteEventInput{Title: "Morning run"})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "Cannot delete event 'Morning run' without a start date and time")
	})

	t.Run("should ask which occurrences to delete", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.DeleteEvent(f.ctx, DeleteEventInput{
			Title:     "Morning run",
			StartDate: strPtr("2025-03-12"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Do you want to delete only the occurrence on Mar 12, 2025? Or do you want to delete this event and all future occurrences?", result.Reply)
	})

	t.Run("should delete a single occurrence via an exception date", func(t *testing.T) {
		f := newFixture()
		created := f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.DeleteEvent(f.ctx, DeleteEventInput{
			Title:         "Morning run",
			StartDate:     strPtr("2025-03-12"),
			StartTime:     strPtr("09:00"),
			ThisEventOnly: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "Successfully deleted only the occurrence on Mar 12, 2025 at 09:00 for recurring event 'Morning run'.", result.Reply)

		updated, err := f.habits.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 12)))
		assert.True(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 13)))
	})

	t.Run("should stop this and future occurrences", func(t *testing.T) {
		f := newFixture()
		created := f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.DeleteEvent(f.ctx, DeleteEventInput{
			Title:               "Morning run",
			StartDate:           strPtr("2025-03-12"),
			ThisAndFutureEvents: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "Successfully deleted this and future occurrences from Mar 12, 2025 for recurring event 'Morning run'.", result.Reply)

		updated, err := f.habits.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 11)))
		assert.False(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 12)))
		assert.False(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 20)))
	})

	t.Run("should not match a habit when the time differs", func(t *testing.T) {
		f := newFixture()
		f.createHabit(t, "Morning run", "1D", nil)

		result, err := f.service.DeleteEvent(f.ctx, DeleteEventInput{
			Title:         "Morning run",
			StartDate:     strPtr("2025-03-12"),
			StartTime:     strPtr("15:00"),
			ThisEventOnly: true,
		})

		require.NoError(t, err)
		assert.Contains(t, result.Reply, "No events found matching title 'Morning run'")
	})
}

func TestDeleteEventToolStandalone(t *testing.T) {
	t.Run("should delete a plain event", func(t *testing.T) {
		f := newFixture()
		created, err := f.events.Create(f.ctx, event.Event{
			Title: "Dentist",
			Start: time.Date(2025, 3, 12, 9, 0, 0, 0, warsaw),
			End:   time.Date(2025, 3, 12, 9, 30, 0, 0, warsaw),
		})
		require.NoError(t, err)

		result, err := f.service.DeleteEvent(f.ctx, DeleteEventInput{Title: "Dentist"})

		require.NoError(t, err)
		assert.Equal(t, "Successfully deleted the event 'Dentist'.", result.Reply)

		_, err = f.events.Get(f.ctx, created.ID)
		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("should stop the source habit when deleting a detached occurrence and its future", func(t *testing.T) {
		f := newFixture()
		created := f.createHabit(t, "Morning run", "1D", nil)
		detached, err := f.events.Create(f.ctx, event.Event{
			Title:         "Gym session",
			Start:         time.Date(2025, 3, 12, 10, 0, 0, 0, warsaw),
			End:           time.Date(2025, 3, 12, 11, 0, 0, 0, warsaw),
			SourceHabitID: mo.Some(created.ID),
		})
		require.NoError(t, err)

		result, err := f.service.DeleteEvent(f.ctx, DeleteEventInput{
			Title:               "Gym session",
			ThisAndFutureEvents: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "Successfully deleted this and future occurrences from 03/12/2025 10:00 AM for recurring event 'Gym session'.", result.Reply)

		_, err = f.events.Get(f.ctx, detached.ID)
		assert.ErrorIs(t, err, event.ErrEventNotFound)

		updated, err := f.habits.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, updated.Schedule.OccursOn(recurrence.NewDate(2025, 3, 12)))
	})
}
