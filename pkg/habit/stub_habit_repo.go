package habit

import (
	"context"
	"strings"

	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/samber/mo"
)

type StubHabitRepository struct {
	habits map[string]Habit
}

func NewStubHabitRepository() *StubHabitRepository {
	return &StubHabitRepository{habits: make(map[string]Habit)}
}

func (s *StubHabitRepository) Create(_ context.Context, habit Habit) (Habit, error) {
	s.habits[habit.ID] = habit
	return habit, nil
}

func (s *StubHabitRepository) Get(_ context.Context, userId int, id string) (Habit, error) {
	habit, found := s.habits[id]
	if !found || habit.UserID != userId {
		return Habit{}, ErrHabitNotFound
	}
	return habit, nil
}

func (s *StubHabitRepository) Update(_ context.Context, habit Habit) (Habit, error) {
	existing, found := s.habits[habit.ID]
	if !found || existing.UserID != habit.UserID {
		return Habit{}, ErrHabitNotFound
	}
	s.habits[habit.ID] = habit
	return habit, nil
}

func (s *StubHabitRepository) Delete(_ context.Context, userId int, id string) error {
	habit, found := s.habits[id]
	if !found || habit.UserID != userId {
		return ErrHabitNotFound
	}
	delete(s.habits, id)
	return nil
}

func (s *StubHabitRepository) FindByUser(_ context.Context, userId int) ([]Habit, error) {
	var habits []Habit
	for _, habit := range s.habits {
		if habit.UserID == userId {
			habits = append(habits, habit)
		}
	}
	return habits, nil
}

func (s *StubHabitRepository) FindByTitle(ctx context.Context, userId int, title string) ([]Habit, error) {
	all, _ := s.FindByUser(ctx, userId)
	var habits []Habit
	for _, habit := range all {
		if strings.Contains(strings.ToLower(habit.Name), strings.ToLower(title)) {
			habits = append(habits, habit)
		}
	}
	return habits, nil
}

func (s *StubHabitRepository) AddExceptionDate(ctx context.Context, userId int, id string, date recurrence.Date) error {
	habit, err := s.Get(ctx, userId, id)
	if err != nil {
		return err
	}
	for _, d := range habit.Schedule.ExceptionDates {
		if d == date {
			return nil
		}
	}
	habit.Schedule.ExceptionDates = append(habit.Schedule.ExceptionDates, date)
	s.habits[id] = habit
	return nil
}

func (s *StubHabitRepository) SetStopDate(ctx context.Context, userId int, id string, date recurrence.Date) error {
	habit, err := s.Get(ctx, userId, id)
	if err != nil {
		return err
	}
	habit.Schedule.StopDate = mo.Some(date)
	s.habits[id] = habit
	return nil
}
