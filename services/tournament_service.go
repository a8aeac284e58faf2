package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/repositories"
	"github.com/pitchside/matchday/standings"
)

type CreateTournamentInput struct {
	Name   string  `json:"name"`
	Season *string `json:"season"`
	// Point values; nil means the 3/1/0 default. Negative values are
	// accepted (a negative-loss-points configuration is legitimate).
	PointsWin  *int `json:"points_win"`
	PointsDraw *int `json:"points_draw"`
	PointsLoss *int `json:"points_loss"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	RegisterTeam(ctx context.Context, tournamentID, teamID int) (*models.TournamentTeam, error)
	ListTeams(ctx context.Context, tournamentID int) ([]*models.TournamentTeam, error)
}

type tournamentService struct {
	tournamentRepo     repositories.TournamentRepository
	tournamentTeamRepo repositories.TournamentTeamRepository
	teamRepo           repositories.TeamRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	tournamentTeamRepo repositories.TournamentTeamRepository,
	teamRepo repositories.TeamRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo:     tournamentRepo,
		tournamentTeamRepo: tournamentTeamRepo,
		teamRepo:           teamRepo,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	pts := standings.DefaultPoints
	if input.PointsWin != nil {
		pts.Win = *input.PointsWin
	}
	if input.PointsDraw != nil {
		pts.Draw = *input.PointsDraw
	}
	if input.PointsLoss != nil {
		pts.Loss = *input.PointsLoss
	}

	tournament := &models.Tournament{
		Name:       name,
		Season:     input.Season,
		Status:     models.TournamentScheduled,
		PointsWin:  pts.Win,
		PointsDraw: pts.Draw,
		PointsLoss: pts.Loss,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("get tournament %d: %w", id, err)
	}

	registrations, err := s.ListTeams(ctx, id)
	if err != nil {
		return nil, err
	}
	tournament.Teams = make([]models.TournamentTeam, 0, len(registrations))
	for _, tt := range registrations {
		tournament.Teams = append(tournament.Teams, *tt)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentScheduled: {models.TournamentActive, models.TournamentCanceled},
		models.TournamentActive:    {models.TournamentCompleted, models.TournamentCanceled},
		models.TournamentCompleted: {},
		models.TournamentCanceled:  {},
	}
	for _, status := range allowed[current] {
		if next == status {
			return true
		}
	}
	return false
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	switch status {
	case models.TournamentScheduled, models.TournamentActive, models.TournamentCompleted, models.TournamentCanceled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, status)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("update tournament %d status: %w", id, err)
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update tournament %d status: %w", id, err)
	}
	tournament.Status = status
	return tournament, nil
}

func (s *tournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID int) (*models.TournamentTeam, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("register team: load tournament %d: %w", tournamentID, err)
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("register team: load team %d: %w", teamID, err)
	}

	tt := &models.TournamentTeam{TournamentID: tournamentID, TeamID: teamID}
	if err := s.tournamentTeamRepo.Create(ctx, tt); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentTeamConflict):
			return nil, ErrTeamAlreadyRegistered
		case errors.Is(err, repositories.ErrTournamentTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("register team %d for tournament %d: %w", teamID, tournamentID, err)
	}
	return tt, nil
}

func (s *tournamentService) ListTeams(ctx context.Context, tournamentID int) ([]*models.TournamentTeam, error) {
	registrations, err := s.tournamentTeamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams for tournament %d: %w", tournamentID, err)
	}
	for _, tt := range registrations {
		team, err := s.teamRepo.GetByID(ctx, tt.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				continue
			}
			return nil, fmt.Errorf("list teams: load team %d: %w", tt.TeamID, err)
		}
		tt.Team = team
	}
	return registrations, nil
}
