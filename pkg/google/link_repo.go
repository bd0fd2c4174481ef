package google

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrLinkNotFound = errors.New("google event link not found")

// LinkRepo maps daybook event ids to the ids Google assigned to their
// mirrored copies.
type LinkRepo interface {
	Store(ctx context.Context, userId int, eventId string, googleEventId string) error
	Get(ctx context.Context, userId int, eventId string) (string, error)
	Delete(ctx context.Context, userId int, eventId string) error
}

type LinkRepoImpl struct {
	db *pgxpool.Pool
}

func NewLinkRepo(db *pgxpool.Pool) *LinkRepoImpl {
	return &LinkRepoImpl{db: db}
}

func (r *LinkRepoImpl) Store(ctx context.Context, userId int, eventId string, googleEventId string) error {
	query := `INSERT INTO google_event_links (user_id, event_id, google_event_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id) DO UPDATE SET google_event_id = EXCLUDED.google_event_id`
	_, err := r.db.Exec(ctx, query, userId, eventId, googleEventId)
	if err != nil {
		log.Errorf("failed to store google event link for event %s: %v", eventId, err)
		return err
	}
	return nil
}

func (r *LinkRepoImpl) Get(ctx context.Context, userId int, eventId string) (string, error) {
	query := `SELECT google_event_id FROM google_event_links WHERE user_id = $1 AND event_id = $2`
	var googleEventId string
	err := r.db.QueryRow(ctx, query, userId, eventId).Scan(&googleEventId)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrLinkNotFound
	} else if err != nil {
		log.Errorf("failed to get google event link for event %s: %v", eventId, err)
		return "", err
	}
	return googleEventId, nil
}

func (r *LinkRepoImpl) Delete(ctx context.Context, userId int, eventId string) error {
	query := `DELETE FROM google_event_links WHERE user_id = $1 AND event_id = $2`
	_, err := r.db.Exec(ctx, query, userId, eventId)
	if err != nil {
		log.Errorf("failed to delete google event link for event %s: %v", eventId, err)
		return err
	}
	return nil
}
