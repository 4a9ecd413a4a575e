package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
	"github.com/mvallesteros/ligastar/storage"
)

type CreatePlayerInput struct {
	TeamID       int    `json:"team_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	JerseyNumber int    `json:"jersey_number"`
}

type PlayerService interface {
	Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UploadPhoto(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error)
	Delete(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *playerService) Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidationFailed)
	}
	if input.JerseyNumber < 1 || input.JerseyNumber > 99 {
		return nil, fmt.Errorf("%w: jersey number must be between 1 and 99", ErrValidationFailed)
	}
	if _, err := s.teamRepo.GetByID(ctx, nil, input.TeamID); err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
	}

	player := &models.Player{
		TeamID:       input.TeamID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		JerseyNumber: input.JerseyNumber,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerJerseyConflict) {
			return nil, ErrJerseyTaken
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrPlayerNotFound, ErrPlayerNotFound)
	}
	s.populatePhotoURL(player)
	return player, nil
}

func (s *playerService) Update(ctx context.Context, player *models.Player) error {
	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerJerseyConflict) {
			return ErrJerseyTaken
		}
		return mapRepoNotFound(err, repositories.ErrPlayerNotFound, ErrPlayerNotFound)
	}
	return nil
}

func (s *playerService) UploadPhoto(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, playerID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrPlayerNotFound, ErrPlayerNotFound)
	}

	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("players/%d/photo-%s%s", playerID, uuid.NewString(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload player photo: %w", err)
	}
	if player.PhotoKey != nil {
		if err := s.uploader.Delete(ctx, *player.PhotoKey); err != nil {
			s.logger.Warn("failed to delete previous photo",
				slog.String("key", *player.PhotoKey), slog.Any("error", err))
		}
	}
	if err := s.playerRepo.UpdatePhotoKey(ctx, nil, playerID, &result.Key); err != nil {
		return nil, err
	}
	player.PhotoKey = &result.Key
	s.populatePhotoURL(player)
	return player, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	if err := s.playerRepo.Delete(ctx, nil, id); err != nil {
		return mapRepoNotFound(err, repositories.ErrPlayerNotFound, ErrPlayerNotFound)
	}
	return nil
}

func (s *playerService) populatePhotoURL(player *models.Player) {
	if player.PhotoKey != nil && *player.PhotoKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*player.PhotoKey); url != "" {
			player.PhotoURL = &url
		}
	}
}
