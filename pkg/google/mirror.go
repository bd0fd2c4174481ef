package google

import (
	"context"
	"errors"

	"github.com/daybook/daybook/internal/event_bus"
	"github.com/daybook/daybook/pkg/event"
	"github.com/daybook/daybook/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Mirror keeps a user's Google calendar in sync with their stored events.
// It reacts to event bus notifications, so the rest of the application never
// talks to Google directly.
type Mirror struct {
	service Service
	links   LinkRepo
}

func NewMirror(service Service, links LinkRepo) *Mirror {
	return &Mirror{service: service, links: links}
}

// Register subscribes the mirror to event lifecycle notifications.
func (m *Mirror) Register(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.EventCreated, m.onCreated)
	event_bus.SubscribeTyped(bus, event_bus.EventUpdated, m.onUpdated)
	event_bus.SubscribeTyped(bus, event_bus.EventDeleted, m.onDeleted)
}

func (m *Mirror) onCreated(ctx context.Context, e event.Event) error {
	calendar, ok, err := m.userCalendar(ctx)
	if err != nil || !ok {
		return err
	}
	googleEventId, err := calendar.InsertEvent(ctx, e)
	if err != nil {
		return err
	}
	return m.links.Store(ctx, e.UserID, e.ID, googleEventId)
}

func (m *Mirror) onUpdated(ctx context.Context, e event.Event) error {
	calendar, ok, err := m.userCalendar(ctx)
	if err != nil || !ok {
		return err
	}
	googleEventId, err := m.links.Get(ctx, e.UserID, e.ID)
	if errors.Is(err, ErrLinkNotFound) {
		// never mirrored, e.g. the user connected Google after creating it
		googleEventId, err = calendar.InsertEvent(ctx, e)
		if err != nil {
			return err
		}
		return m.links.Store(ctx, e.UserID, e.ID, googleEventId)
	} else if err != nil {
		return err
	}
	return calendar.UpdateEvent(ctx, googleEventId, e)
}

func (m *Mirror) onDeleted(ctx context.Context, e event.Event) error {
	calendar, ok, err := m.userCalendar(ctx)
	if err != nil || !ok {
		return err
	}
	googleEventId, err := m.links.Get(ctx, e.UserID, e.ID)
	if errors.Is(err, ErrLinkNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	if err := calendar.DeleteEvent(ctx, googleEventId); err != nil {
		return err
	}
	return m.links.Delete(ctx, e.UserID, e.ID)
}

// userCalendar resolves the current user's target calendar. It reports
// ok=false when mirroring is not set up for the user.
func (m *Mirror) userCalendar(ctx context.Context) (*Calendar, bool, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, false, err
	}
	calendarId := currentUser.Settings.GoogleCalendarId
	if calendarId == "" {
		return nil, false, nil
	}
	calendar, err := m.service.GetCalendar(ctx, calendarId)
	if errors.Is(err, ErrUnathenticated) {
		log.Debugf("User %d has a Google calendar configured but is not authenticated", currentUser.Id)
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return calendar, true, nil
}
