package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pitchside/matchday/models"
)

var ErrMatchEventMatchInvalid = errors.New("match event match conflict or invalid")

// MatchEventRepository is the remote side of the offline event queue.
// CreateBatch runs one prepared insert per event, all inside a single
// transaction; the ON CONFLICT clause on client_id makes re-sending a
// batch after a partially observed failure harmless.
type MatchEventRepository interface {
	CreateBatch(ctx context.Context, events []models.MatchEvent) error
	ListByMatch(ctx context.Context, matchID int) ([]*models.MatchEvent, error)
}

type postgresMatchEventRepository struct {
	db *sql.DB
}

func NewPostgresMatchEventRepository(db *sql.DB) MatchEventRepository {
	return &postgresMatchEventRepository{db: db}
}

func (r *postgresMatchEventRepository) CreateBatch(ctx context.Context, events []models.MatchEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateBatch failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO match_events
			(match_id, client_id, kind, minute, side, player_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (client_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("CreateBatch failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		_, err = stmt.ExecContext(ctx,
			event.MatchID, event.ClientID, event.Kind, event.Minute,
			event.Side, event.PlayerID, event.Detail, event.CreatedAt,
		)
		if err != nil {
			return handleMatchEventError(fmt.Errorf("CreateBatch failed for event %s: %w", event.ClientID, err))
		}
	}
	return tx.Commit()
}

func (r *postgresMatchEventRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.MatchEvent, error) {
	query := `
		SELECT id, match_id, client_id, kind, minute, side, player_id, detail, created_at
		FROM match_events
		WHERE match_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.MatchEvent, 0)
	for rows.Next() {
		event := &models.MatchEvent{}
		if scanErr := rows.Scan(
			&event.ID, &event.MatchID, &event.ClientID, &event.Kind, &event.Minute,
			&event.Side, &event.PlayerID, &event.Detail, &event.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func handleMatchEventError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == "match_events_match_id_fkey" {
			return ErrMatchEventMatchInvalid
		}
	}
	return err
}
