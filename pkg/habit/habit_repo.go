package habit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daybook/daybook/pkg/recurrence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

var ErrHabitNotFound = errors.New("habit not found")

type Repository interface {
	Create(ctx context.Context, habit Habit) (Habit, error)
	Get(ctx context.Context, userId int, id string) (Habit, error)
	Update(ctx context.Context, habit Habit) (Habit, error)
	Delete(ctx context.Context, userId int, id string) error
	FindByUser(ctx context.Context, userId int) ([]Habit, error)
	FindByTitle(ctx context.Context, userId int, title string) ([]Habit, error)
	AddExceptionDate(ctx context.Context, userId int, id string, date recurrence.Date) error
	SetStopDate(ctx context.Context, userId int, id string, date recurrence.Date) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const habitColumns = `id, user_id, name, creation_date, frequency, days, exception_dates, stop_date,
		start_hour, start_minute, start_timezone, length_minutes, all_day, event_type,
		priority, fixed, content, notifications, prev_version_id`

func (r *RepositoryImpl) Create(ctx context.Context, habit Habit) (Habit, error) {
	notifications, err := json.Marshal(habit.Notifications)
	if err != nil {
		return Habit{}, fmt.Errorf("marshaling notifications: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		habit.ID,
		habit.UserID,
		habit.Name,
		habit.Schedule.CreationDate.Time(time.UTC),
		habit.Schedule.Frequency.String(),
		daysArray(habit.Schedule.Days),
		datesToTimes(habit.Schedule.ExceptionDates),
		optionalDate(habit.Schedule.StopDate),
		habit.StartTime.Hour,
		habit.StartTime.Minute,
		habit.StartTime.Timezone,
		habit.Length,
		habit.AllDay,
		habit.EventType,
		habit.Priority.ToPointer(),
		habit.Fixed,
		habit.Content.ToPointer(),
		notifications,
		habit.PrevVersionID.ToPointer(),
	)
	if err != nil {
		log.Errorf("Error creating habit: %v", err)
		return Habit{}, fmt.Errorf("creating habit: %w", err)
	}
	return habit, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id string) (Habit, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = $1 AND id = $2`,
		userId, id)
	return scanHabit(row)
}

func (r *RepositoryImpl) Update(ctx context.Context, habit Habit) (Habit, error) {
	notifications, err := json.Marshal(habit.Notifications)
	if err != nil {
		return Habit{}, fmt.Errorf("marshaling notifications: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE habits SET name = $3, creation_date = $4, frequency = $5, days = $6,
			exception_dates = $7, stop_date = $8, start_hour = $9, start_minute = $10,
			start_timezone = $11, length_minutes = $12, all_day = $13, event_type = $14,
			priority = $15, fixed = $16, content = $17, notifications = $18, prev_version_id = $19
		WHERE user_id = $1 AND id = $2`,
		habit.UserID,
		habit.ID,
		habit.Name,
		habit.Schedule.CreationDate.Time(time.UTC),
		habit.Schedule.Frequency.String(),
		daysArray(habit.Schedule.Days),
		datesToTimes(habit.Schedule.ExceptionDates),
		optionalDate(habit.Schedule.StopDate),
		habit.StartTime.Hour,
		habit.StartTime.Minute,
		habit.StartTime.Timezone,
		habit.Length,
		habit.AllDay,
		habit.EventType,
		habit.Priority.ToPointer(),
		habit.Fixed,
		habit.Content.ToPointer(),
		notifications,
		habit.PrevVersionID.ToPointer(),
	)
	if err != nil {
		log.Errorf("Error updating habit %s: %v", habit.ID, err)
		return Habit{}, fmt.Errorf("updating habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Habit{}, ErrHabitNotFound
	}
	return habit, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM habits WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		log.Errorf("Error deleting habit %s: %v", id, err)
		return fmt.Errorf("deleting habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *RepositoryImpl) FindByUser(ctx context.Context, userId int) ([]Habit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = $1 ORDER BY name`, userId)
	if err != nil {
		log.Errorf("Error listing habits: %v", err)
		return nil, fmt.Errorf("listing habits: %w", err)
	}
	defer rows.Close()
	return scanHabits(rows)
}

func (r *RepositoryImpl) FindByTitle(ctx context.Context, userId int, title string) ([]Habit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = $1 AND name ILIKE '%' || $2 || '%' ORDER BY name`,
		userId, title)
	if err != nil {
		log.Errorf("Error searching habits by title: %v", err)
		return nil, fmt.Errorf("searching habits: %w", err)
	}
	defer rows.Close()
	return scanHabits(rows)
}

func (r *RepositoryImpl) AddExceptionDate(ctx context.Context, userId int, id string, date recurrence.Date) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE habits SET exception_dates = array_append(exception_dates, $3)
		WHERE user_id = $1 AND id = $2 AND NOT ($3 = ANY(exception_dates))`,
		userId, id, date.Time(time.UTC))
	if err != nil {
		log.Errorf("Error adding exception date to habit %s: %v", id, err)
		return fmt.Errorf("adding exception date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the habit is missing or the date was already excluded.
		if _, getErr := r.Get(ctx, userId, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

func (r *RepositoryImpl) SetStopDate(ctx context.Context, userId int, id string, date recurrence.Date) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE habits SET stop_date = $3 WHERE user_id = $1 AND id = $2`,
		userId, id, date.Time(time.UTC))
	if err != nil {
		log.Errorf("Error setting stop date on habit %s: %v", id, err)
		return fmt.Errorf("setting stop date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHabitNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (Habit, error) {
	var (
		habit          Habit
		creationDate   time.Time
		frequency      string
		exceptionDates []time.Time
		stopDate       sql.NullTime
		priority       sql.NullString
		content        sql.NullString
		notifications  []byte
		prevVersionID  sql.NullString
	)
	err := row.Scan(
		&habit.ID,
		&habit.UserID,
		&habit.Name,
		&creationDate,
		&frequency,
		&habit.Schedule.Days,
		&exceptionDates,
		&stopDate,
		&habit.StartTime.Hour,
		&habit.StartTime.Minute,
		&habit.StartTime.Timezone,
		&habit.Length,
		&habit.AllDay,
		&habit.EventType,
		&priority,
		&habit.Fixed,
		&content,
		&notifications,
		&prevVersionID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Habit{}, ErrHabitNotFound
	}
	if err != nil {
		log.Errorf("Error scanning habit: %v", err)
		return Habit{}, fmt.Errorf("scanning habit: %w", err)
	}
	// pgx decodes timestamptz into the local zone; dates are stored as
	// midnight UTC, so normalize before extracting the calendar day.
	habit.Schedule.CreationDate = recurrence.DateOf(creationDate.UTC())
	habit.Schedule.Frequency, err = recurrence.ParseFrequency(frequency)
	if err != nil {
		return Habit{}, fmt.Errorf("stored habit %s has invalid frequency %q: %w", habit.ID, frequency, err)
	}
	if len(habit.Schedule.Days) == 0 {
		habit.Schedule.Days = nil
	}
	habit.Schedule.ExceptionDates = timesToDates(exceptionDates)
	if stopDate.Valid {
		habit.Schedule.StopDate = mo.Some(recurrence.DateOf(stopDate.Time.UTC()))
	}
	if priority.Valid {
		habit.Priority = mo.Some(priority.String)
	}
	if content.Valid {
		habit.Content = mo.Some(content.String)
	}
	if prevVersionID.Valid {
		habit.PrevVersionID = mo.Some(prevVersionID.String)
	}
	if len(notifications) > 0 {
		if err := json.Unmarshal(notifications, &habit.Notifications); err != nil {
			return Habit{}, fmt.Errorf("unmarshaling notifications for habit %s: %w", habit.ID, err)
		}
	}
	return habit, nil
}

func scanHabits(rows pgx.Rows) ([]Habit, error) {
	var habits []Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading habits: %w", err)
	}
	return habits, nil
}

// daysArray keeps the days column non-null; the schedule treats a missing
// list and an empty one the same.
func daysArray(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}

func datesToTimes(dates []recurrence.Date) []time.Time {
	times := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		times = append(times, d.Time(time.UTC))
	}
	return times
}

func timesToDates(times []time.Time) []recurrence.Date {
	if len(times) == 0 {
		return nil
	}
	dates := make([]recurrence.Date, 0, len(times))
	for _, t := range times {
		dates = append(dates, recurrence.DateOf(t.UTC()))
	}
	return dates
}

func optionalDate(date mo.Option[recurrence.Date]) *time.Time {
	d, ok := date.Get()
	if !ok {
		return nil
	}
	t := d.Time(time.UTC)
	return &t
}
