package google

import (
	"context"
	"fmt"

	"github.com/daybook/daybook/pkg/user"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarItem is one entry of the user's Google calendar list, offered in
// the settings UI when picking the mirror target.
type CalendarItem struct {
	ID      string
	Summary string
}

// Service builds authenticated calendar clients for the current user. Both
// operations return ErrUnathenticated when the user has not completed the
// OAuth flow yet.
type Service interface {
	// GetCalendar returns a client bound to one of the user's calendars,
	// typically the mirror target from their settings.
	GetCalendar(ctx context.Context, calendarId string) (*Calendar, error)
	// ListCalendars returns all calendars the user can write to, so the
	// settings UI can offer a choice of mirror targets.
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
}

type ServiceImpl struct {
	auth *GoogleAuth
}

func NewService(auth *GoogleAuth) *ServiceImpl {
	return &ServiceImpl{auth: auth}
}

func (s *ServiceImpl) GetCalendar(ctx context.Context, calendarId string) (*Calendar, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.calendarClient(ctx, userId)
	if err != nil {
		return nil, err
	}
	return newGoogleCalendar(client, userId, calendarId), nil
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.calendarClient(ctx, userId)
	if err != nil {
		return nil, err
	}
	list, err := client.CalendarList.List().Do()
	if err != nil {
		log.Errorf("Error listing Google calendars for user %d: %v", userId, err)
		return nil, fmt.Errorf("listing Google calendars: %w", err)
	}
	items := make([]CalendarItem, 0, len(list.Items))
	for _, cal := range list.Items {
		items = append(items, CalendarItem{ID: cal.Id, Summary: cal.Summary})
	}
	return items, nil
}

func (s *ServiceImpl) calendarClient(ctx context.Context, userId int) (*gcal.Service, error) {
	httpClient, err := s.auth.getClient(ctx, userId)
	if err != nil {
		log.Errorf("Error building Google auth client for user %d: %v", userId, err)
		return nil, fmt.Errorf("building Google auth client: %w", err)
	}
	if httpClient == nil {
		return nil, ErrUnathenticated
	}
	service, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		log.Errorf("Error building Google Calendar client for user %d: %v", userId, err)
		return nil, fmt.Errorf("building Google Calendar client: %w", err)
	}
	return service, nil
}
