package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	Store(ctx context.Context, event Event) (Event, error)
	Get(ctx context.Context, userId int, id string) (Event, error)
	Update(ctx context.Context, event Event) (Event, error)
	Delete(ctx context.Context, userId int, id string) error
	FindInRange(ctx context.Context, userId int, from time.Time, to time.Time) ([]Event, error)
	FindByTitle(ctx context.Context, userId int, title string) ([]Event, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const eventColumns = `id, user_id, title, start_time, end_time, all_day, event_type,
		priority, fixed, done, content, notifications, source_habit_id`

func (r *RepositoryImpl) Store(ctx context.Context, event Event) (Event, error) {
	notifications, err := json.Marshal(event.Notifications)
	if err != nil {
		return Event{}, fmt.Errorf("marshaling notifications: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		event.ID,
		event.UserID,
		event.Title,
		event.Start,
		event.End,
		event.AllDay,
		event.EventType,
		event.Priority.ToPointer(),
		event.Fixed,
		event.Done,
		event.Content.ToPointer(),
		notifications,
		event.SourceHabitID.ToPointer(),
	)
	if err != nil {
		log.Errorf("Error storing event: %v", err)
		return Event{}, fmt.Errorf("storing event: %w", err)
	}
	return event, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id string) (Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE user_id = $1 AND id = $2`,
		userId, id)
	return scanEvent(row)
}

func (r *RepositoryImpl) Update(ctx context.Context, event Event) (Event, error) {
	notifications, err := json.Marshal(event.Notifications)
	if err != nil {
		return Event{}, fmt.Errorf("marshaling notifications: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET title = $3, start_time = $4, end_time = $5, all_day = $6,
			event_type = $7, priority = $8, fixed = $9, done = $10, content = $11,
			notifications = $12, source_habit_id = $13
		WHERE user_id = $1 AND id = $2`,
		event.UserID,
		event.ID,
		event.Title,
		event.Start,
		event.End,
		event.AllDay,
		event.EventType,
		event.Priority.ToPointer(),
		event.Fixed,
		event.Done,
		event.Content.ToPointer(),
		notifications,
		event.SourceHabitID.ToPointer(),
	)
	if err != nil {
		log.Errorf("Error updating event %s: %v", event.ID, err)
		return Event{}, fmt.Errorf("updating event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		log.Errorf("Error deleting event %s: %v", id, err)
		return fmt.Errorf("deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) FindInRange(ctx context.Context, userId int, from time.Time, to time.Time) ([]Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		WHERE user_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time`,
		userId, from, to)
	if err != nil {
		log.Errorf("Error listing events: %v", err)
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *RepositoryImpl) FindByTitle(ctx context.Context, userId int, title string) ([]Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		WHERE user_id = $1 AND title ILIKE '%' || $2 || '%'
		ORDER BY start_time`,
		userId, title)
	if err != nil {
		log.Errorf("Error searching events by title: %v", err)
		return nil, fmt.Errorf("searching events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		event         Event
		priority      sql.NullString
		content       sql.NullString
		notifications []byte
		sourceHabitID sql.NullString
	)
	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Title,
		&event.Start,
		&event.End,
		&event.AllDay,
		&event.EventType,
		&priority,
		&event.Fixed,
		&event.Done,
		&content,
		&notifications,
		&sourceHabitID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		log.Errorf("Error scanning event: %v", err)
		return Event{}, fmt.Errorf("scanning event: %w", err)
	}
	if priority.Valid {
		event.Priority = mo.Some(priority.String)
	}
	if content.Valid {
		event.Content = mo.Some(content.String)
	}
	if sourceHabitID.Valid {
		event.SourceHabitID = mo.Some(sourceHabitID.String)
	}
	if len(notifications) > 0 {
		if err := json.Unmarshal(notifications, &event.Notifications); err != nil {
			return Event{}, fmt.Errorf("unmarshaling notifications for event %s: %w", event.ID, err)
		}
	}
	return event, nil
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return events, nil
}
