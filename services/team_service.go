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

type CreateTeamInput struct {
	TournamentID int     `json:"tournament_id"`
	Name         string  `json:"name"`
	GroupLabel   *string `json:"group_label,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
	Delete(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, input.TournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTournamentNotFound, ErrTournamentNotFound)
	}
	if input.GroupLabel != nil {
		if err := validateGroupLabel(tournament, *input.GroupLabel); err != nil {
			return nil, err
		}
	}

	team := &models.Team{
		TournamentID: input.TournamentID,
		Name:         input.Name,
		GroupLabel:   input.GroupLabel,
		ContactEmail: input.ContactEmail,
		Active:       true,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	return team, nil
}

func validateGroupLabel(tournament *models.Tournament, label string) error {
	for _, l := range tournament.GroupLabels() {
		if l == label {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrGroupLabelInvalid, label)
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
	}
	players, err := s.playerRepo.ListByTeam(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	team.Players = players
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.populateLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, team *models.Team) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, team.TournamentID)
	if err != nil {
		return mapRepoNotFound(err, repositories.ErrTournamentNotFound, ErrTournamentNotFound)
	}
	if team.GroupLabel != nil {
		if err := validateGroupLabel(tournament, *team.GroupLabel); err != nil {
			return err
		}
	}
	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		return mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
	}

	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("teams/%d/logo-%s%s", teamID, uuid.NewString(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}
	if team.LogoKey != nil {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			s.logger.Warn("failed to delete previous logo",
				slog.String("key", *team.LogoKey), slog.Any("error", err))
		}
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, nil, teamID, &result.Key); err != nil {
		return nil, err
	}
	team.LogoKey = &result.Key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	if err := s.teamRepo.Delete(ctx, nil, id); err != nil {
		return mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
	}
	return nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team.LogoKey != nil && *team.LogoKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
			team.LogoURL = &url
		}
	}
}
