package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/repositories"
)

type CreatePlayerInput struct {
	Name        string  `json:"name"`
	ShirtNumber *int    `json:"shirt_number"`
	Position    *string `json:"position"`
}

type UpdatePlayerInput struct {
	Name        *string `json:"name"`
	ShirtNumber *int    `json:"shirt_number"`
	Position    *string `json:"position"`
}

type PlayerService interface {
	Create(ctx context.Context, teamID int, input CreatePlayerInput) (*models.Player, error)
	Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id int) error
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository, teamRepo repositories.TeamRepository) PlayerService {
	return &playerService{playerRepo: playerRepo, teamRepo: teamRepo}
}

func (s *playerService) Create(ctx context.Context, teamID int, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("create player: load team %d: %w", teamID, err)
	}

	player := &models.Player{
		TeamID:      teamID,
		Name:        name,
		ShirtNumber: input.ShirtNumber,
		Position:    input.Position,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("create player: %w", err)
	}
	return player, nil
}

func (s *playerService) Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("update player %d: %w", id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrPlayerNameRequired
		}
		player.Name = name
	}
	if input.ShirtNumber != nil {
		player.ShirtNumber = input.ShirtNumber
	}
	if input.Position != nil {
		player.Position = input.Position
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("update player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	return nil
}

func (s *playerService) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("list players: load team %d: %w", teamID, err)
	}
	players, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list players for team %d: %w", teamID, err)
	}
	return players, nil
}
