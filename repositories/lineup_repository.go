package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pitchside/matchday/models"
)

var ErrLineupReferenceInvalid = errors.New("lineup reference conflict or invalid")

type LineupRepository interface {
	// ReplaceForMatchTeam swaps a team's whole lineup for a match in one
	// transaction: partial lineups are never observable.
	ReplaceForMatchTeam(ctx context.Context, matchID, teamID int, entries []*models.LineupEntry) error
	ListByMatch(ctx context.Context, matchID int) ([]*models.LineupEntry, error)
}

type postgresLineupRepository struct {
	db *sql.DB
}

func NewPostgresLineupRepository(db *sql.DB) LineupRepository {
	return &postgresLineupRepository{db: db}
}

func (r *postgresLineupRepository) ReplaceForMatchTeam(ctx context.Context, matchID, teamID int, entries []*models.LineupEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceForMatchTeam failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM lineup_entries WHERE match_id = $1 AND team_id = $2`, matchID, teamID)
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO lineup_entries (match_id, team_id, player_id, starting)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`)
		if err != nil {
			return fmt.Errorf("ReplaceForMatchTeam failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, entry := range entries {
			entry.MatchID = matchID
			entry.TeamID = teamID
			err = stmt.QueryRowContext(ctx, matchID, teamID, entry.PlayerID, entry.Starting).
				Scan(&entry.ID, &entry.CreatedAt)
			if err != nil {
				return handleLineupError(err)
			}
		}
	}
	return tx.Commit()
}

func (r *postgresLineupRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.LineupEntry, error) {
	query := `
		SELECT id, match_id, team_id, player_id, starting, created_at
		FROM lineup_entries
		WHERE match_id = $1
		ORDER BY team_id ASC, starting DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.LineupEntry, 0)
	for rows.Next() {
		entry := &models.LineupEntry{}
		if scanErr := rows.Scan(
			&entry.ID, &entry.MatchID, &entry.TeamID, &entry.PlayerID, &entry.Starting, &entry.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func handleLineupError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrLineupReferenceInvalid
	}
	return err
}
