package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/daybook/daybook/internal/utils"
	"github.com/daybook/daybook/pkg/event"
	"github.com/daybook/daybook/pkg/habit"
	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/daybook/daybook/pkg/user"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// scanWindow is how far ahead a single run looks for reminders that are due.
// It matches the default daily cron schedule so runs tile without gaps.
// maxLead bounds how far an occurrence may lie past the scan window and still
// have its reminder fire inside it.
const (
	scanWindow = 24 * time.Hour
	maxLead    = 7 * 24 * time.Hour
)

type Service interface {
	RunOnce(ctx context.Context) error
	Start(schedule string) error
	Stop()
}

type ServiceImpl struct {
	users  user.Repo
	habits habit.Service
	events event.Service
	sender Sender
	clock  utils.Clock
	cron   *cron.Cron
}

func NewService(users user.Repo, habits habit.Service, events event.Service, sender Sender, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		users:  users,
		habits: habits,
		events: events,
		sender: sender,
		clock:  clock,
	}
}

// Start schedules RunOnce on the given cron expression.
func (s *ServiceImpl) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			log.Errorf("Reminder run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	return nil
}

func (s *ServiceImpl) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce delivers every reminder whose send time falls within the scan
// window, across all users.
func (s *ServiceImpl) RunOnce(ctx context.Context) error {
	from := s.clock.Now()
	to := from.Add(scanWindow)

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, u := range users {
		uctx := user.WithUser(ctx, u)
		reminders, err := s.dueReminders(uctx, u, from, to)
		if err != nil {
			log.Errorf("Failed to collect reminders for user %d: %v", u.Id, err)
			errs = append(errs, err)
			continue
		}
		for _, reminder := range reminders {
			if err := s.sender.Send(uctx, reminder); err != nil {
				log.Errorf("Failed to send reminder for user %d: %v", u.Id, err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *ServiceImpl) dueReminders(ctx context.Context, u user.User, from time.Time, to time.Time) ([]Reminder, error) {
	var reminders []Reminder

	habits, err := s.habits.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		loc, err := h.StartTime.Location()
		if err != nil {
			log.Warnf("Skipping reminders for habit %s: %v", h.ID, err)
			continue
		}
		horizon := to.Add(maxLead).In(loc)
		dates := h.Schedule.OccurrencesBetween(recurrence.DateOf(from.In(loc)), recurrence.DateOf(horizon))
		for _, d := range dates {
			occurrence, err := h.OccurrenceOn(d)
			if err != nil {
				return nil, err
			}
			reminders = append(reminders, dueFor(u.Id, h.Name, occurrence.Start, h.Notifications, from, to)...)
		}
	}

	events, err := s.events.FindInRange(ctx, from, to.Add(maxLead))
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		notifications := make([]habit.Notification, 0, len(e.Notifications))
		for _, n := range e.Notifications {
			notifications = append(notifications, habit.Notification{ID: n.ID, TimeBefore: n.TimeBefore, TimeUnit: n.TimeUnit})
		}
		reminders = append(reminders, dueFor(u.Id, e.Title, e.Start, notifications, from, to)...)
	}

	return reminders, nil
}

// dueFor keeps the notifications whose send time lands in [from, to).
func dueFor(userID int, title string, start time.Time, notifications []habit.Notification, from time.Time, to time.Time) []Reminder {
	var due []Reminder
	for _, n := range notifications {
		lead, err := leadDuration(n.TimeBefore, n.TimeUnit)
		if err != nil {
			log.Warnf("Skipping notification %s on '%s': %v", n.ID, title, err)
			continue
		}
		sendAt := start.Add(-lead)
		if sendAt.Before(from) || !sendAt.Before(to) {
			continue
		}
		due = append(due, Reminder{UserID: userID, Title: title, Start: start, LeadTime: lead})
	}
	return due
}
