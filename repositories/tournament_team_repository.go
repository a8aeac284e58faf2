package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/pitchside/matchday/models"
)

var (
	ErrTournamentTeamNotFound = errors.New("tournament team registration not found")
	ErrTournamentTeamConflict = errors.New("team is already registered for this tournament")
	ErrTournamentTeamInvalid  = errors.New("tournament team reference conflict or invalid")
)

type TournamentTeamRepository interface {
	Create(ctx context.Context, tt *models.TournamentTeam) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentTeam, error)
	Exists(ctx context.Context, tournamentID, teamID int) (bool, error)
	Delete(ctx context.Context, tournamentID, teamID int) error
}

type postgresTournamentTeamRepository struct {
	db *sql.DB
}

func NewPostgresTournamentTeamRepository(db *sql.DB) TournamentTeamRepository {
	return &postgresTournamentTeamRepository{db: db}
}

func (r *postgresTournamentTeamRepository) Create(ctx context.Context, tt *models.TournamentTeam) error {
	query := `
		INSERT INTO tournament_teams (tournament_id, team_id)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, tt.TournamentID, tt.TeamID).
		Scan(&tt.ID, &tt.CreatedAt)
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTournamentTeamConflict
		case "23503":
			return ErrTournamentTeamInvalid
		}
	}
	return err
}

func (r *postgresTournamentTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentTeam, error) {
	query := `
		SELECT id, tournament_id, team_id, created_at
		FROM tournament_teams
		WHERE tournament_id = $1
		ORDER BY team_id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*models.TournamentTeam, 0)
	for rows.Next() {
		tt := &models.TournamentTeam{}
		if scanErr := rows.Scan(&tt.ID, &tt.TournamentID, &tt.TeamID, &tt.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, tt)
	}
	return registrations, rows.Err()
}

func (r *postgresTournamentTeamRepository) Exists(ctx context.Context, tournamentID, teamID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tournament_teams WHERE tournament_id = $1 AND team_id = $2
		)`, tournamentID, teamID).Scan(&exists)
	return exists, err
}

func (r *postgresTournamentTeamRepository) Delete(ctx context.Context, tournamentID, teamID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tournament_teams WHERE tournament_id = $1 AND team_id = $2`,
		tournamentID, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentTeamNotFound)
}
