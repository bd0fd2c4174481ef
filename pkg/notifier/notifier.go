package notifier

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Reminder is a single notification that is due to be delivered: an upcoming
// occurrence paired with one of its configured lead times.
type Reminder struct {
	UserID   int
	Title    string
	Start    time.Time
	LeadTime time.Duration
}

type Sender interface {
	Send(ctx context.Context, reminder Reminder) error
}

// LogSender writes reminders to the application log. It stands in for a real
// delivery channel (email, push) which is configured per deployment.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, reminder Reminder) error {
	log.Infof("Reminder for user %d: '%s' starts at %s",
		reminder.UserID, reminder.Title, reminder.Start.Format(time.RFC3339))
	return nil
}

func leadDuration(timeBefore int, timeUnit string) (time.Duration, error) {
	switch timeUnit {
	case "minutes":
		return time.Duration(timeBefore) * time.Minute, nil
	case "hours":
		return time.Duration(timeBefore) * time.Hour, nil
	case "days":
		return time.Duration(timeBefore) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown notification time unit %q", timeUnit)
}
