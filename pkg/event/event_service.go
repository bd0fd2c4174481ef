package event

import (
	"context"
	"errors"
	"time"

	"github.com/daybook/daybook/internal/event_bus"
	"github.com/daybook/daybook/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, event Event) (Event, error)
	Get(ctx context.Context, id string) (Event, error)
	Update(ctx context.Context, event Event) (Event, error)
	Delete(ctx context.Context, id string) error
	FindInRange(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
	FindByTitle(ctx context.Context, title string) ([]Event, error)
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) Create(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, err
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}
	event.ID = uuid.New().String()
	event.UserID = userId
	stored, err := s.repo.Store(ctx, event)
	if err != nil {
		return Event{}, err
	}
	s.publish(ctx, event_bus.EventCreated, stored)
	return stored, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, err
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) Update(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, err
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}
	event.UserID = userId
	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return Event{}, err
	}
	s.publish(ctx, event_bus.EventUpdated, updated)
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userId, id); err != nil {
		return err
	}
	s.publish(ctx, event_bus.EventDeleted, deleted)
	return nil
}

func (s *ServiceImpl) FindInRange(ctx context.Context, from time.Time, to time.Time) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindInRange(ctx, userId, from, to)
}

func (s *ServiceImpl) FindByTitle(ctx context.Context, title string) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByTitle(ctx, userId, title)
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, payload Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, payload)); err != nil {
		log.Warnf("Error publishing %s for event %s: %v", eventType, payload.ID, err)
	}
}

func validateEvent(event Event) error {
	if event.Title == "" {
		return errors.New("event title must not be empty")
	}
	if event.Start.IsZero() || event.End.IsZero() {
		return errors.New("event start and end must be set")
	}
	if event.End.Before(event.Start) {
		return errors.New("event end must not be before its start")
	}
	return nil
}
