package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/pitchside/matchday/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, season, status, points_win, points_draw, points_loss)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		tournament.Name, tournament.Season, tournament.Status,
		tournament.PointsWin, tournament.PointsDraw, tournament.PointsLoss,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	return handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, season, status, points_win, points_draw, points_loss, created_at
		FROM tournaments
		WHERE id = $1`
	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Season, &t.Status,
		&t.PointsWin, &t.PointsDraw, &t.PointsLoss, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, season, status, points_win, points_draw, points_loss, created_at
		FROM tournaments
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Season, &t.Status,
			&t.PointsWin, &t.PointsDraw, &t.PointsLoss, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
	}
	return err
}
