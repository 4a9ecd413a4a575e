package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name               string     `json:"name"`
	CategoryID         int        `json:"category_id"`
	GroupCount         int        `json:"group_count"`
	QualifiersPerGroup int        `json:"qualifiers_per_group"`
	BestLoserSlots     int        `json:"best_loser_slots"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
}

// TournamentOverview is the aggregate view of one tournament for the public
// overview endpoint.
type TournamentOverview struct {
	Tournament *models.Tournament        `json:"tournament"`
	Teams      []models.Team             `json:"teams"`
	Standings  []models.TeamStatistics   `json:"standings"`
	Phases     []models.EliminationPhase `json:"phases"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListActive(ctx context.Context) ([]models.Tournament, error)
	// SetPhase moves the tournament along its phase ladder. Flipping to
	// finished after the final is the organizer's explicit call, never the
	// engine's.
	SetPhase(ctx context.Context, id int, phase models.TournamentPhase) (*models.Tournament, error)
	Overview(ctx context.Context, id int) (*TournamentOverview, error)
	// RefreshStandings recomputes every team of every active tournament.
	// The scheduler runs it as a consistency sweep.
	RefreshStandings(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.CategoryRepository
	teamRepo       repositories.TeamRepository
	standingRepo   repositories.StandingRepository
	bracketRepo    repositories.BracketRepository
	standingSvc    StandingService
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	teamRepo repositories.TeamRepository,
	standingRepo repositories.StandingRepository,
	bracketRepo repositories.BracketRepository,
	standingSvc StandingService,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		teamRepo:       teamRepo,
		standingRepo:   standingRepo,
		bracketRepo:    bracketRepo,
		standingSvc:    standingSvc,
		logger:         logger,
	}
}

// phaseOrder is the full tournament phase ladder in progression order.
var phaseOrder = []models.TournamentPhase{
	models.PhaseRegistration,
	models.PhaseGroups,
	models.PhaseRoundOf16,
	models.PhaseQuarterfinals,
	models.PhaseSemifinals,
	models.PhaseFinal,
	models.PhaseFinished,
}

func phaseIndex(phase models.TournamentPhase) int {
	for i, p := range phaseOrder {
		if p == phase {
			return i
		}
	}
	return -1
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.GroupCount < 1 || input.GroupCount > 26 {
		return nil, fmt.Errorf("%w: group count must be between 1 and 26", ErrValidationFailed)
	}
	if input.QualifiersPerGroup < 1 {
		return nil, fmt.Errorf("%w: at least one qualifier per group", ErrValidationFailed)
	}
	if input.BestLoserSlots < 0 {
		return nil, fmt.Errorf("%w: negative best-loser slots", ErrValidationFailed)
	}
	if input.EndDate != nil && !input.StartDate.Before(*input.EndDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidationFailed)
	}

	if _, err := s.categoryRepo.GetByID(ctx, nil, input.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	tournament := &models.Tournament{
		Name:               input.Name,
		CategoryID:         input.CategoryID,
		Phase:              models.PhaseRegistration,
		GroupCount:         input.GroupCount,
		QualifiersPerGroup: input.QualifiersPerGroup,
		BestLoserSlots:     input.BestLoserSlots,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		Active:             true,
	}
	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}
	s.logger.Info("tournament created", slog.Int("id", tournament.ID), slog.String("name", tournament.Name))
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTournamentNotFound, ErrTournamentNotFound)
	}
	category, err := s.categoryRepo.GetByID(ctx, nil, tournament.CategoryID)
	if err == nil {
		tournament.Category = category
	}
	return tournament, nil
}

func (s *tournamentService) ListActive(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.ListActive(ctx, nil)
}

func (s *tournamentService) SetPhase(ctx context.Context, id int, phase models.TournamentPhase) (*models.Tournament, error) {
	target := phaseIndex(phase)
	if target < 0 {
		return nil, fmt.Errorf("%w: %q", ErrTournamentPhaseInvalid, phase)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTournamentNotFound, ErrTournamentNotFound)
	}
	current := phaseIndex(tournament.Phase)
	if target < current {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentPhaseTransition, tournament.Phase, phase)
	}

	if err := s.tournamentRepo.UpdatePhase(ctx, nil, id, phase); err != nil {
		return nil, err
	}
	tournament.Phase = phase
	s.logger.Info("tournament phase changed",
		slog.Int("id", id), slog.String("phase", string(phase)))
	return tournament, nil
}

func (s *tournamentService) Overview(ctx context.Context, id int) (*TournamentOverview, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	overview := &TournamentOverview{Tournament: tournament}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview.Teams, err = s.teamRepo.ListByTournament(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		overview.Standings, err = s.standingRepo.ListByTournament(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		overview.Phases, err = s.bracketRepo.ListPhases(gctx, nil, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load overview for tournament %d: %w", id, err)
	}
	return overview, nil
}

func (s *tournamentService) RefreshStandings(ctx context.Context) error {
	tournaments, err := s.tournamentRepo.ListActive(ctx, nil)
	if err != nil {
		return err
	}
	for _, t := range tournaments {
		teams, err := s.teamRepo.ListByTournament(ctx, nil, t.ID)
		if err != nil {
			return err
		}
		for _, team := range teams {
			if _, err := s.standingSvc.Recompute(ctx, team.ID, t.ID); err != nil {
				return fmt.Errorf("failed to refresh standings for team %d: %w", team.ID, err)
			}
		}
		s.logger.Info("standings refreshed",
			slog.Int("tournament_id", t.ID), slog.Int("teams", len(teams)))
	}
	return nil
}
