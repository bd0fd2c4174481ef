package google

import (
	"context"
	"fmt"
	"time"

	"github.com/daybook/daybook/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnathenticated = fmt.Errorf("user is unauthenticated, authentication is required")

// Calendar wraps a single user's Google calendar.
type Calendar struct {
	service    *gcal.Service
	userId     int
	calendarId string
}

func newGoogleCalendar(service *gcal.Service, userId int, calendarId string) *Calendar {
	return &Calendar{
		service:    service,
		userId:     userId,
		calendarId: calendarId,
	}
}

// InsertEvent mirrors an event into the Google calendar and returns the
// Google event id.
func (c *Calendar) InsertEvent(ctx context.Context, e event.Event) (string, error) {
	log.Debugf("Adding event %s to Google calendar %s", e.ID, c.calendarId)
	result, err := c.service.Events.Insert(c.calendarId, toGoogleEvent(e)).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to insert event in Google Calendar: %v", err)
		log.Error(err)
		return "", err
	}
	return result.Id, nil
}

// UpdateEvent overwrites the mirrored copy identified by googleEventId.
func (c *Calendar) UpdateEvent(ctx context.Context, googleEventId string, e event.Event) error {
	log.Debugf("Updating event %s in Google calendar %s", e.ID, c.calendarId)
	_, err := c.service.Events.Update(c.calendarId, googleEventId, toGoogleEvent(e)).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to update event in Google Calendar: %v", err)
		log.Error(err)
		return err
	}
	return nil
}

func (c *Calendar) DeleteEvent(ctx context.Context, googleEventId string) error {
	log.Debugf("Deleting event %s from Google calendar %s", googleEventId, c.calendarId)
	err := c.service.Events.Delete(c.calendarId, googleEventId).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to delete event from Google Calendar: %v", err)
		log.Error(err)
		return err
	}
	return nil
}

func toGoogleEvent(e event.Event) *gcal.Event {
	googleEvent := &gcal.Event{
		Summary:     e.Title,
		Description: e.Content.OrElse(""),
	}
	if e.AllDay {
		googleEvent.Start = &gcal.EventDateTime{Date: e.Start.Format("2006-01-02")}
		googleEvent.End = &gcal.EventDateTime{Date: e.End.Format("2006-01-02")}
	} else {
		googleEvent.Start = &gcal.EventDateTime{DateTime: e.Start.Format(time.RFC3339)}
		googleEvent.End = &gcal.EventDateTime{DateTime: e.End.Format(time.RFC3339)}
	}
	return googleEvent
}
