package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/repositories"
	"github.com/pitchside/matchday/storage"
)

type CreateTeamInput struct {
	Name      string  `json:"name"`
	ShortName *string `json:"short_name"`
	City      *string `json:"city"`
}

type UpdateTeamInput struct {
	Name      *string `json:"name"`
	ShortName *string `json:"short_name"`
	City      *string `json:"city"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	UploadCrest(ctx context.Context, id int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, playerRepo repositories.PlayerRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, playerRepo: playerRepo, uploader: uploader}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team := &models.Team{
		Name:      name,
		ShortName: input.ShortName,
		City:      input.City,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team %d: %w", id, err)
	}

	players, err := s.playerRepo.ListByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get team %d roster: %w", id, err)
	}
	team.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		team.Players = append(team.Players, *p)
	}

	s.populateCrestURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	for _, team := range teams {
		s.populateCrestURL(team)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("update team %d: %w", id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.ShortName != nil {
		team.ShortName = input.ShortName
	}
	if input.City != nil {
		team.City = input.City
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("update team %d: %w", id, err)
	}
	s.populateCrestURL(team)
	return team, nil
}

var crestExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

func (s *teamService) UploadCrest(ctx context.Context, id int, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrCrestStorageUnavailable
	}
	ext, ok := crestExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCrestType, contentType)
	}

	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("upload crest for team %d: %w", id, err)
	}

	key := fmt.Sprintf("crests/team_%d_%s.%s", id, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("upload crest for team %d: %w", id, err)
	}

	oldKey := team.CrestKey
	if err := s.teamRepo.UpdateCrestKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("upload crest for team %d: persist key: %w", id, err)
	}
	if oldKey != nil && *oldKey != result.Key {
		// Stale object; deletion failure only leaks one orphaned file.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	team.CrestKey = &result.Key
	team.CrestURL = &result.Location
	return team, nil
}

func (s *teamService) populateCrestURL(team *models.Team) {
	if s.uploader == nil || team.CrestKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.CrestKey)
	team.CrestURL = &url
}
