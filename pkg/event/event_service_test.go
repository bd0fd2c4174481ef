package event

import (
	"context"
	"testing"
	"time"

	"github.com/daybook/daybook/internal/event_bus"
	"github.com/daybook/daybook/pkg/user"
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

func testContext() context.Context {
	return user.WithUser(context.Background(), user.User{Id: 1, Uid: "user-1"})
}

func sampleEvent(title string, start time.Time) Event {
	return Event{
		Title:     title,
		Start:     start,
		End:       start.Add(time.Hour),
		EventType: "appointment",
	}
}

func TestCreateEvent(t *testing.T) {
	ctx := testContext()
	bus := event_bus.NewEventBus()
	service := NewService(NewStubEventRepository(), bus)

	t.Run("should assign an id and publish a created event", func(t *testing.T) {
		var published []Event
		unsubscribe := event_bus.SubscribeTyped(bus, event_bus.EventCreated,
			func(_ context.Context, data Event) error {
				published = append(published, data)
				return nil
			})
		defer unsubscribe()

		created, err := service.Create(ctx, sampleEvent("Dentist", time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw)))

		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, 1, created.UserID)
		require.Len(t, published, 1)
		assert.Equal(t, created.ID, published[0].ID)
	})

	t.Run("should reject an event without a title", func(t *testing.T) {
		_, err := service.Create(ctx, sampleEvent("", time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw)))

		assert.Error(t, err)
	})

	t.Run("should reject an event ending before it starts", func(t *testing.T) {
		event := sampleEvent("Dentist", time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw))
		event.End = event.Start.Add(-time.Minute)

		_, err := service.Create(ctx, event)

		assert.Error(t, err)
	})

	t.Run("should fail without a user in context", func(t *testing.T) {
		_, err := service.Create(context.Background(), sampleEvent("Dentist", time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw)))

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestDeleteEvent(t *testing.T) {
	ctx := testContext()
	bus := event_bus.NewEventBus()
	service := NewService(NewStubEventRepository(), bus)

	t.Run("should delete and publish the removed event", func(t *testing.T) {
		created, err := service.Create(ctx, sampleEvent("Dentist", time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw)))
		require.NoError(t, err)

		var published []Event
		unsubscribe := event_bus.SubscribeTyped(bus, event_bus.EventDeleted,
			func(_ context.Context, data Event) error {
				published = append(published, data)
				return nil
			})
		defer unsubscribe()

		require.NoError(t, service.Delete(ctx, created.ID))

		_, err = service.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrEventNotFound)
		require.Len(t, published, 1)
		assert.Equal(t, created.ID, published[0].ID)
	})

	t.Run("should return not found for an unknown event", func(t *testing.T) {
		err := service.Delete(ctx, "missing")

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestFindInRange(t *testing.T) {
	ctx := testContext()
	service := NewService(NewStubEventRepository(), event_bus.NewEventBus())

	morning, err := service.Create(ctx, sampleEvent("Dentist", time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw)))
	require.NoError(t, err)
	evening, err := service.Create(ctx, sampleEvent("Dinner", time.Date(2025, 3, 10, 19, 0, 0, 0, warsaw)))
	require.NoError(t, err)
	_, err = service.Create(ctx, sampleEvent("Next week", time.Date(2025, 3, 17, 9, 0, 0, 0, warsaw)))
	require.NoError(t, err)

	events, err := service.FindInRange(ctx,
		time.Date(2025, 3, 10, 0, 0, 0, 0, warsaw),
		time.Date(2025, 3, 11, 0, 0, 0, 0, warsaw))

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, morning.ID, events[0].ID)
	assert.Equal(t, evening.ID, events[1].ID)
}

func TestFindByTitle(t *testing.T) {
	ctx := testContext()
	service := NewService(NewStubEventRepository(), event_bus.NewEventBus())

	created, err := service.Create(ctx, sampleEvent("Dentist appointment", time.Date(2025, 3, 10, 9, 0, 0, 0, warsaw)))
	require.NoError(t, err)
	_, err = service.Create(ctx, sampleEvent("Dinner", time.Date(2025, 3, 10, 19, 0, 0, 0, warsaw)))
	require.NoError(t, err)

	events, err := service.FindByTitle(ctx, "dentist")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].ID)
}
