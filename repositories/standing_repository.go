package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pitchside/matchday/models"
)

var ErrStandingNotFound = errors.New("standing not found")

// StandingRepository persists the derived tournament table. Methods take
// an SQLExecutor so the standing service can run the delete+insert
// replace as one transaction; pass nil to use the repository's own
// connection.
type StandingRepository interface {
	GetByTournamentAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) (*models.Standing, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, ranked bool) ([]*models.Standing, error)
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error
	Upsert(ctx context.Context, exec SQLExecutor, standing *models.Standing) error
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `id, tournament_id, team_id, played, won, drawn, lost, goals_for, goals_against, goal_diff, points, last_five, position, updated_at`

func (r *postgresStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.Standing, error) {
	var s models.Standing
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.TeamID, &s.Played, &s.Won, &s.Drawn, &s.Lost,
		&s.GoalsFor, &s.GoalsAgainst, &s.GoalDiff, &s.Points, &s.LastFive,
		&s.Position, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) GetByTournamentAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) (*models.Standing, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + standingColumns + `
		FROM standings
		WHERE tournament_id = $1 AND team_id = $2`
	row := executor.QueryRowContext(ctx, query, tournamentID, teamID)
	return r.scanStanding(row)
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, ranked bool) ([]*models.Standing, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + standingColumns + ` FROM standings WHERE tournament_id = $1`
	if ranked {
		// Matches idx_standings_ranking; team_id keeps the sort stable.
		query += ` ORDER BY points DESC, goal_diff DESC, goals_for DESC, team_id ASC`
	} else {
		query += ` ORDER BY team_id ASC`
	}

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s, scanErr := r.scanStanding(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error {
	if len(standings) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO standings
			(tournament_id, team_id, played, won, drawn, lost, goals_for, goals_against, goal_diff, points, last_five, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	for _, s := range standings {
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			s.TournamentID, s.TeamID, s.Played, s.Won, s.Drawn, s.Lost,
			s.GoalsFor, s.GoalsAgainst, s.GoalDiff, s.Points, s.LastFive,
			s.Position, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for team %d: %w", s.TeamID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) Upsert(ctx context.Context, exec SQLExecutor, standing *models.Standing) error {
	executor := r.getExecutor(exec)
	if standing.UpdatedAt.IsZero() {
		standing.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO standings
			(tournament_id, team_id, played, won, drawn, lost, goals_for, goals_against, goal_diff, points, last_five, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (tournament_id, team_id) DO UPDATE SET
			played = EXCLUDED.played,
			won = EXCLUDED.won,
			drawn = EXCLUDED.drawn,
			lost = EXCLUDED.lost,
			goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against,
			goal_diff = EXCLUDED.goal_diff,
			points = EXCLUDED.points,
			last_five = EXCLUDED.last_five,
			updated_at = EXCLUDED.updated_at
		RETURNING id`
	return executor.QueryRowContext(ctx, query,
		standing.TournamentID, standing.TeamID, standing.Played, standing.Won,
		standing.Drawn, standing.Lost, standing.GoalsFor, standing.GoalsAgainst,
		standing.GoalDiff, standing.Points, standing.LastFive, standing.Position,
		standing.UpdatedAt,
	).Scan(&standing.ID)
}

func (r *postgresStandingRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM standings WHERE tournament_id = $1`, tournamentID)
	return err
}
