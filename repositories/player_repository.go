package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/pitchside/matchday/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player team conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (team_id, name, shirt_number, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		player.TeamID, player.Name, player.ShirtNumber, player.Position,
	).Scan(&player.ID, &player.CreatedAt)
	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, team_id, name, shirt_number, position, created_at
		FROM players
		WHERE id = $1`
	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID, &player.TeamID, &player.Name, &player.ShirtNumber, &player.Position, &player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `
		SELECT id, team_id, name, shirt_number, position, created_at
		FROM players
		WHERE team_id = $1
		ORDER BY shirt_number ASC NULLS LAST, name ASC`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player := &models.Player{}
		if scanErr := rows.Scan(
			&player.ID, &player.TeamID, &player.Name, &player.ShirtNumber, &player.Position, &player.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET name = $1, shirt_number = $2, position = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query,
		player.Name, player.ShirtNumber, player.Position, player.ID,
	)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "players_team_id_fkey" {
			return ErrPlayerTeamInvalid
		}
	}
	return err
}
