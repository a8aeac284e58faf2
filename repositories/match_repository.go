package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/pitchside/matchday/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	// ListCompletedByTournament returns completed matches in kickoff order,
	// the chronological order the standings trail depends on.
	ListCompletedByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdateScoreStatus(ctx context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, home_team_id, away_team_id, home_score, away_score, status, kickoff_at, venue, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, home_team_id, away_team_id, home_score, away_score, status, kickoff_at, venue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		match.TournamentID, match.HomeTeamID, match.AwayTeamID,
		match.HomeScore, match.AwayScore, match.Status, match.KickoffAt, match.Venue,
	).Scan(&match.ID, &match.CreatedAt)
	return handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID, &match.TournamentID, &match.HomeTeamID, &match.AwayTeamID,
		&match.HomeScore, &match.AwayScore, &match.Status, &match.KickoffAt,
		&match.Venue, &match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY kickoff_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatches(rows)
}

func (r *postgresMatchRepository) ListCompletedByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND status = $2
		ORDER BY kickoff_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID, models.MatchCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatches(rows)
}

func (r *postgresMatchRepository) UpdateScoreStatus(ctx context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	query := `
		UPDATE matches
		SET home_score = $1, away_score = $2, status = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, homeScore, awayScore, status, id)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func scanMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if scanErr := rows.Scan(
			&match.ID, &match.TournamentID, &match.HomeTeamID, &match.AwayTeamID,
			&match.HomeScore, &match.AwayScore, &match.Status, &match.KickoffAt,
			&match.Venue, &match.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "matches_tournament_id_fkey":
				return ErrMatchTournamentInvalid
			case "matches_home_team_id_fkey", "matches_away_team_id_fkey":
				return ErrMatchTeamInvalid
			}
		}
	}
	return err
}
