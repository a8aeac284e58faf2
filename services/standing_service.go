package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/repositories"
	"github.com/pitchside/matchday/standings"
	"github.com/pitchside/matchday/storage"
)

// TxBeginner is the slice of *sql.DB the standing service needs to run
// the table replace atomically. A nil TxBeginner degrades to sequential
// non-transactional calls, which is what the in-memory test fakes use.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// StandingService owns the derived tournament table. Recalculate is the
// authority for display-ready rank order; ApplyResult is the cheaper
// single-match path used on finalization and does not re-rank.
type StandingService interface {
	Recalculate(ctx context.Context, tournamentID int) error
	ApplyResult(ctx context.Context, tournamentID, homeTeamID, awayTeamID, homeScore, awayScore int) error
	GetTable(ctx context.Context, tournamentID int) ([]*models.Standing, error)
}

type standingService struct {
	db             TxBeginner
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	teamRepo       repositories.TeamRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewStandingService(
	db TxBeginner,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) StandingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &standingService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		teamRepo:       teamRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

// Recalculate rebuilds the tournament table from scratch out of every
// completed match with a recorded score and replaces the stored rows as a
// set. A tournament with no finished matches ends up with an empty table.
// Any store failure aborts the whole operation; no partial table is ever
// committed.
func (s *standingService) Recalculate(ctx context.Context, tournamentID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("recalculate standings: load tournament %d: %w", tournamentID, err)
	}

	matches, err := s.matchRepo.ListCompletedByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("recalculate standings: load matches for tournament %d: %w", tournamentID, err)
	}

	rows := standings.Accumulate(matches, standings.PointsFor(tournament))
	ranked := standings.Rank(rows)

	replacement := make([]*models.Standing, 0, len(ranked))
	for _, row := range ranked {
		replacement = append(replacement, rowToStanding(tournamentID, row))
	}

	var exec repositories.SQLExecutor
	var tx *sql.Tx
	if s.db != nil {
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("recalculate standings: begin transaction: %w", err)
		}
		defer tx.Rollback()
		exec = tx
	}

	if err := s.standingRepo.DeleteByTournamentID(ctx, exec, tournamentID); err != nil {
		return fmt.Errorf("recalculate standings: clear tournament %d: %w", tournamentID, err)
	}
	if err := s.standingRepo.BatchCreate(ctx, exec, replacement); err != nil {
		return fmt.Errorf("recalculate standings: insert tournament %d: %w", tournamentID, err)
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("recalculate standings: commit tournament %d: %w", tournamentID, err)
		}
	}

	s.logger.Info("standings recalculated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", len(replacement)),
		slog.Int("matches", len(matches)))
	return nil
}

// ApplyResult folds one final score into the two affected rows, creating
// zero baselines for teams without a row yet. It must produce the same
// counters as a full recompute would for the same match history; only
// Position is allowed to go stale. Both rows commit in one transaction:
// a failure anywhere leaves neither row written.
func (s *standingService) ApplyResult(ctx context.Context, tournamentID, homeTeamID, awayTeamID, homeScore, awayScore int) error {
	if homeTeamID == awayTeamID {
		return ErrMatchSameTeam
	}
	if homeScore < 0 || awayScore < 0 {
		return ErrNegativeScore
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("apply result: load tournament %d: %w", tournamentID, err)
	}
	pts := standings.PointsFor(tournament)

	var exec repositories.SQLExecutor
	var tx *sql.Tx
	if s.db != nil {
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("apply result: begin transaction: %w", err)
		}
		defer tx.Rollback()
		exec = tx
	}

	home, err := s.loadOrZero(ctx, exec, tournamentID, homeTeamID)
	if err != nil {
		return err
	}
	away, err := s.loadOrZero(ctx, exec, tournamentID, awayTeamID)
	if err != nil {
		return err
	}

	homeRow := standingToRow(home)
	awayRow := standingToRow(away)
	standings.ApplyMatch(&homeRow, &awayRow, homeScore, awayScore, pts)

	updateStanding(home, &homeRow)
	updateStanding(away, &awayRow)

	if err := s.standingRepo.Upsert(ctx, exec, home); err != nil {
		return fmt.Errorf("apply result: upsert home team %d: %w", homeTeamID, err)
	}
	if err := s.standingRepo.Upsert(ctx, exec, away); err != nil {
		return fmt.Errorf("apply result: upsert away team %d: %w", awayTeamID, err)
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("apply result: commit t:%d: %w", tournamentID, err)
		}
	}
	return nil
}

// GetTable returns the ranked table with team details populated.
func (s *standingService) GetTable(ctx context.Context, tournamentID int) ([]*models.Standing, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("get table: load tournament %d: %w", tournamentID, err)
	}

	table, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID, true)
	if err != nil {
		return nil, fmt.Errorf("get table: list standings for tournament %d: %w", tournamentID, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, standing := range table {
		standing := standing
		g.Go(func() error {
			team, err := s.teamRepo.GetByID(gCtx, standing.TeamID)
			if err != nil {
				return fmt.Errorf("get table: load team %d: %w", standing.TeamID, err)
			}
			if s.uploader != nil && team.CrestKey != nil {
				url := s.uploader.GetPublicURL(*team.CrestKey)
				team.CrestURL = &url
			}
			standing.Team = team
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *standingService) loadOrZero(ctx context.Context, exec repositories.SQLExecutor, tournamentID, teamID int) (*models.Standing, error) {
	standing, err := s.standingRepo.GetByTournamentAndTeam(ctx, exec, tournamentID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrStandingNotFound) {
			return &models.Standing{TournamentID: tournamentID, TeamID: teamID}, nil
		}
		return nil, fmt.Errorf("apply result: load standing t:%d team:%d: %w", tournamentID, teamID, err)
	}
	return standing, nil
}

func rowToStanding(tournamentID int, row *standings.Row) *models.Standing {
	return &models.Standing{
		TournamentID: tournamentID,
		TeamID:       row.TeamID,
		Played:       row.Played,
		Won:          row.Won,
		Drawn:        row.Drawn,
		Lost:         row.Lost,
		GoalsFor:     row.GoalsFor,
		GoalsAgainst: row.GoalsAgainst,
		GoalDiff:     row.GoalDiff,
		Points:       row.Points,
		LastFive:     standings.LastFive(row.Trail),
		Position:     row.Position,
	}
}

// standingToRow seeds an accumulator from a stored row. The stored trail
// is already bounded to five letters, which is all LastFive needs to stay
// correct after further applies.
func standingToRow(s *models.Standing) standings.Row {
	return standings.Row{
		TeamID:       s.TeamID,
		Played:       s.Played,
		Won:          s.Won,
		Drawn:        s.Drawn,
		Lost:         s.Lost,
		GoalsFor:     s.GoalsFor,
		GoalsAgainst: s.GoalsAgainst,
		GoalDiff:     s.GoalDiff,
		Points:       s.Points,
		Trail:        s.LastFive,
	}
}

func updateStanding(s *models.Standing, row *standings.Row) {
	s.Played = row.Played
	s.Won = row.Won
	s.Drawn = row.Drawn
	s.Lost = row.Lost
	s.GoalsFor = row.GoalsFor
	s.GoalsAgainst = row.GoalsAgainst
	s.GoalDiff = row.GoalDiff
	s.Points = row.Points
	s.LastFive = standings.LastFive(row.Trail)
}
