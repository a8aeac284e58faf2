package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/pitchside/matchday/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already in use")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateCrestKey(ctx context.Context, id int, crestKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, short_name, city)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, team.Name, team.ShortName, team.City).
		Scan(&team.ID, &team.CreatedAt)
	return handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, short_name, city, crest_key, created_at
		FROM teams
		WHERE id = $1`
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.ShortName, &team.City, &team.CrestKey, &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, name, short_name, city, crest_key, created_at
		FROM teams
		ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := rows.Scan(
			&team.ID, &team.Name, &team.ShortName, &team.City, &team.CrestKey, &team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $1, short_name = $2, city = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.ShortName, team.City, team.ID)
	if err != nil {
		return handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateCrestKey(ctx context.Context, id int, crestKey *string) error {
	query := `UPDATE teams SET crest_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, crestKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
	}
	return err
}
