package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pitchside/matchday/live"
	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/repositories"
)

type CreateMatchInput struct {
	TournamentID *int      `json:"tournament_id"`
	HomeTeamID   int       `json:"home_team_id"`
	AwayTeamID   int       `json:"away_team_id"`
	KickoffAt    time.Time `json:"kickoff_at"`
	Venue        *string   `json:"venue"`
}

type LineupEntryInput struct {
	PlayerID int  `json:"player_id"`
	Starting bool `json:"starting"`
}

// FinalizeResult reports the committed match alongside the best-effort
// standings outcome. A standings failure never unwinds the match result;
// it surfaces here so the UI can show a recoverable message and the
// caller can retry with a full recompute.
type FinalizeResult struct {
	Match            *models.Match `json:"match"`
	StandingsUpdated bool          `json:"standings_updated"`
	StandingsError   *string       `json:"standings_error,omitempty"`
}

type MatchService interface {
	Create(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	SetLineup(ctx context.Context, matchID, teamID int, entries []LineupEntryInput) ([]*models.LineupEntry, error)
	GetLineup(ctx context.Context, matchID int) ([]*models.LineupEntry, error)
	Finalize(ctx context.Context, matchID, homeScore, awayScore int) (*FinalizeResult, error)
	RepairStandings(ctx context.Context, matchID int) error
}

type matchService struct {
	matchRepo          repositories.MatchRepository
	lineupRepo         repositories.LineupRepository
	tournamentTeamRepo repositories.TournamentTeamRepository
	standingService    StandingService
	hub                *live.Hub
	logger             *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	lineupRepo repositories.LineupRepository,
	tournamentTeamRepo repositories.TournamentTeamRepository,
	standingService StandingService,
	hub *live.Hub,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		matchRepo:          matchRepo,
		lineupRepo:         lineupRepo,
		tournamentTeamRepo: tournamentTeamRepo,
		standingService:    standingService,
		hub:                hub,
		logger:             logger,
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrMatchSameTeam
	}
	if input.TournamentID != nil {
		for _, teamID := range []int{input.HomeTeamID, input.AwayTeamID} {
			registered, err := s.tournamentTeamRepo.Exists(ctx, *input.TournamentID, teamID)
			if err != nil {
				return nil, fmt.Errorf("create match: check registration of team %d: %w", teamID, err)
			}
			if !registered {
				return nil, fmt.Errorf("%w: team %d in tournament %d", ErrTeamNotRegistered, teamID, *input.TournamentID)
			}
		}
	}

	kickoff := input.KickoffAt
	if kickoff.IsZero() {
		kickoff = time.Now()
	}
	match := &models.Match{
		TournamentID: input.TournamentID,
		HomeTeamID:   input.HomeTeamID,
		AwayTeamID:   input.AwayTeamID,
		Status:       models.MatchScheduled,
		KickoffAt:    kickoff,
		Venue:        input.Venue,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrMatchTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, fmt.Errorf("list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) SetLineup(ctx context.Context, matchID, teamID int, entries []LineupEntryInput) ([]*models.LineupEntry, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if teamID != match.HomeTeamID && teamID != match.AwayTeamID {
		return nil, fmt.Errorf("%w: team %d is not playing match %d", ErrTeamNotFound, teamID, matchID)
	}

	lineup := make([]*models.LineupEntry, 0, len(entries))
	for _, entry := range entries {
		lineup = append(lineup, &models.LineupEntry{
			PlayerID: entry.PlayerID,
			Starting: entry.Starting,
		})
	}
	if err := s.lineupRepo.ReplaceForMatchTeam(ctx, matchID, teamID, lineup); err != nil {
		if errors.Is(err, repositories.ErrLineupReferenceInvalid) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("set lineup for match %d team %d: %w", matchID, teamID, err)
	}
	return lineup, nil
}

func (s *matchService) GetLineup(ctx context.Context, matchID int) ([]*models.LineupEntry, error) {
	if _, err := s.GetByID(ctx, matchID); err != nil {
		return nil, err
	}
	entries, err := s.lineupRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get lineup for match %d: %w", matchID, err)
	}
	return entries, nil
}

// Finalize records the final score and completes the match, then updates
// the standings best-effort through the incremental path. The match result
// and the standings commit independently: a standings failure is reported
// in the result, logged, and left for a later full recompute to repair.
func (s *matchService) Finalize(ctx context.Context, matchID, homeScore, awayScore int) (*FinalizeResult, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrNegativeScore
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	switch match.Status {
	case models.MatchCompleted:
		// Re-finalizing would double-count in the incremental standings
		// path; corrections go through a full recompute instead.
		return nil, ErrMatchAlreadyCompleted
	case models.MatchCanceled:
		return nil, ErrMatchCanceled
	}

	if err := s.matchRepo.UpdateScoreStatus(ctx, matchID, &homeScore, &awayScore, models.MatchCompleted); err != nil {
		return nil, fmt.Errorf("finalize match %d: %w", matchID, err)
	}
	match.HomeScore = &homeScore
	match.AwayScore = &awayScore
	match.Status = models.MatchCompleted

	result := &FinalizeResult{Match: match}
	if match.TournamentID != nil {
		err := s.standingService.ApplyResult(ctx, *match.TournamentID, match.HomeTeamID, match.AwayTeamID, homeScore, awayScore)
		if err != nil {
			s.logger.Warn("standings update failed after match finalization",
				slog.Int("match_id", matchID),
				slog.Int("tournament_id", *match.TournamentID),
				slog.Any("error", err))
			msg := err.Error()
			result.StandingsError = &msg
		} else {
			result.StandingsUpdated = true
		}
	}

	if s.hub != nil {
		s.hub.BroadcastMatch(matchID, live.MessageMatchFinalized, match)
	}
	return result, nil
}

// RepairStandings re-derives the tournament table after a finalization
// whose standings update failed. It goes through the full recompute, which
// is safe to repeat, rather than re-applying the single result.
func (s *matchService) RepairStandings(ctx context.Context, matchID int) error {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if match.TournamentID == nil {
		return ErrMatchWithoutTournament
	}
	return s.standingService.Recalculate(ctx, *match.TournamentID)
}
