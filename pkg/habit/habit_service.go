package habit

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/daybook/daybook/internal/event_bus"
	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/daybook/daybook/pkg/user"
	"github.com/google/uuid"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, habit Habit) (Habit, error)
	Get(ctx context.Context, id string) (Habit, error)
	Update(ctx context.Context, habit Habit) (Habit, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Habit, error)
	FindByTitle(ctx context.Context, title string) ([]Habit, error)
	OccurrencesBetween(ctx context.Context, from recurrence.Date, to recurrence.Date) ([]Occurrence, error)
	// AddException removes a single occurrence from the habit's schedule.
	AddException(ctx context.Context, id string, date recurrence.Date) error
	// StopFrom ends the habit so that occurrences on or after date no
	// longer happen. The stop date is exclusive.
	StopFrom(ctx context.Context, id string, date recurrence.Date) error
	// SplitFrom ends the habit so that occurrences on or after date move to
	// a successor habit carrying the given changes. The successor's own
	// creation date anchors its cadence; when unset it defaults to date.
	SplitFrom(ctx context.Context, id string, date recurrence.Date, successor Habit) (Habit, error)
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) Create(ctx context.Context, habit Habit) (Habit, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Habit{}, err
	}
	if err := validateHabit(habit); err != nil {
		return Habit{}, err
	}
	habit.ID = uuid.New().String()
	habit.UserID = userId
	created, err := s.repo.Create(ctx, habit)
	if err != nil {
		return Habit{}, err
	}
	s.publish(ctx, event_bus.HabitCreated, created)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Habit, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Habit{}, err
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) Update(ctx context.Context, habit Habit) (Habit, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Habit{}, err
	}
	if err := validateHabit(habit); err != nil {
		return Habit{}, err
	}
	habit.UserID = userId
	updated, err := s.repo.Update(ctx, habit)
	if err != nil {
		return Habit{}, err
	}
	s.publish(ctx, event_bus.HabitUpdated, updated)
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
	s.publish(ctx, event_bus.HabitDeleted, deleted)
	return nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]Habit, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByUser(ctx, userId)
}

func (s *ServiceImpl) FindByTitle(ctx context.Context, title string) ([]Habit, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByTitle(ctx, userId, title)
}

func (s *ServiceImpl) OccurrencesBetween(ctx context.Context, from recurrence.Date, to recurrence.Date) ([]Occurrence, error) {
	habits, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var occurrences []Occurrence
	for _, habit := range habits {
		for _, date := range habit.Schedule.OccurrencesBetween(from, to) {
			occurrence, err := habit.OccurrenceOn(date)
			if err != nil {
				log.Errorf("Error expanding habit %s: %v", habit.ID, err)
				return nil, fmt.Errorf("expanding habit %s: %w", habit.ID, err)
			}
			occurrences = append(occurrences, occurrence)
		}
	}
	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].Start.Before(occurrences[j].Start)
	})
	return occurrences, nil
}

func (s *ServiceImpl) AddException(ctx context.Context, id string, date recurrence.Date) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return err
	}
	return s.repo.AddExceptionDate(ctx, userId, id, date)
}

func (s *ServiceImpl) StopFrom(ctx context.Context, id string, date recurrence.Date) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return err
	}
	return s.repo.SetStopDate(ctx, userId, id, date)
}

func (s *ServiceImpl) SplitFrom(ctx context.Context, id string, date recurrence.Date, successor Habit) (Habit, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Habit{}, err
	}
	predecessor, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return Habit{}, err
	}
	if successor.Schedule.CreationDate.IsZero() {
		successor.Schedule.CreationDate = date
	}
	if err := validateHabit(successor); err != nil {
		return Habit{}, err
	}
	if err := s.repo.SetStopDate(ctx, userId, predecessor.ID, date); err != nil {
		return Habit{}, err
	}
	successor.ID = uuid.New().String()
	successor.UserID = userId
	successor.PrevVersionID = mo.Some(predecessor.ID)
	created, err := s.repo.Create(ctx, successor)
	if err != nil {
		return Habit{}, err
	}
	predecessor.Schedule.StopDate = mo.Some(date)
	s.publish(ctx, event_bus.HabitUpdated, predecessor)
	s.publish(ctx, event_bus.HabitCreated, created)
	return created, nil
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, payload Habit) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, payload)); err != nil {
		log.Warnf("Error publishing %s for habit %s: %v", eventType, payload.ID, err)
	}
}

func validateHabit(habit Habit) error {
	if habit.Name == "" {
		return errors.New("habit name must not be empty")
	}
	if habit.Schedule.Frequency.IsZero() {
		return errors.New("habit frequency must be set")
	}
	if habit.Length < 1 {
		return errors.New("habit length must be at least one minute")
	}
	if _, err := habit.StartTime.Location(); err != nil {
		return err
	}
	return nil
}
