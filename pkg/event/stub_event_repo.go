package event

import (
	"context"
	"sort"
	"strings"
	"time"
)

type StubEventRepository struct {
	events map[string]Event
}

func NewStubEventRepository() *StubEventRepository {
	return &StubEventRepository{events: make(map[string]Event)}
}

func (s *StubEventRepository) Store(_ context.Context, event Event) (Event, error) {
	s.events[event.ID] = event
	return event, nil
}

func (s *StubEventRepository) Get(_ context.Context, userId int, id string) (Event, error) {
	event, found := s.events[id]
	if !found || event.UserID != userId {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (s *StubEventRepository) Update(_ context.Context, event Event) (Event, error) {
	existing, found := s.events[event.ID]
	if !found || existing.UserID != event.UserID {
		return Event{}, ErrEventNotFound
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *StubEventRepository) Delete(_ context.Context, userId int, id string) error {
	event, found := s.events[id]
	if !found || event.UserID != userId {
		return ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *StubEventRepository) FindInRange(_ context.Context, userId int, from time.Time, to time.Time) ([]Event, error) {
	var events []Event
	for _, event := range s.events {
		if event.UserID == userId && event.Start.Before(to) && event.End.After(from) {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

func (s *StubEventRepository) FindByTitle(_ context.Context, userId int, title string) ([]Event, error) {
	var events []Event
	for _, event := range s.events {
		if event.UserID == userId && strings.Contains(strings.ToLower(event.Title), strings.ToLower(title)) {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}
