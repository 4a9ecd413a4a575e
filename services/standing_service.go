package services

import (
	"context"
	"log/slog"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
	"github.com/mvallesteros/ligastar/standings"
)

// GroupTable is one group's ranked standings.
type GroupTable struct {
	Label string                  `json:"label"`
	Rows  []models.TeamStatistics `json:"rows"`
}

// TournamentTable is the full standings view: per group and overall, both in
// tie-break key order.
type TournamentTable struct {
	TournamentID int                     `json:"tournament_id"`
	Groups       []GroupTable            `json:"groups"`
	Overall      []models.TeamStatistics `json:"overall"`
}

// StandingService is the standings aggregator. A recompute is always a full
// replay of the team's completed matches; there is no incremental path.
type StandingService interface {
	// Recompute derives the team's statistics row from scratch in its own
	// transaction and returns the written snapshot.
	Recompute(ctx context.Context, teamID, tournamentID int) (*models.TeamStatistics, error)

	// RecomputeExec is Recompute inside a caller-owned transaction.
	RecomputeExec(ctx context.Context, exec repositories.SQLExecutor, teamID, tournamentID int) (*models.TeamStatistics, error)

	Table(ctx context.Context, tournamentID int) (*TournamentTable, error)
	TopScorers(ctx context.Context, tournamentID, limit int) ([]repositories.ScorerTally, error)
	MostCarded(ctx context.Context, tournamentID, limit int) ([]repositories.CardTally, error)
}

type standingService struct {
	txRunner       TxRunner
	matchRepo      repositories.MatchRepository
	cardRepo       repositories.CardRepository
	goalRepo       repositories.GoalRepository
	standingRepo   repositories.StandingRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewStandingService(
	txRunner TxRunner,
	matchRepo repositories.MatchRepository,
	cardRepo repositories.CardRepository,
	goalRepo repositories.GoalRepository,
	standingRepo repositories.StandingRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) StandingService {
	return &standingService{
		txRunner:       txRunner,
		matchRepo:      matchRepo,
		cardRepo:       cardRepo,
		goalRepo:       goalRepo,
		standingRepo:   standingRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *standingService) Recompute(ctx context.Context, teamID, tournamentID int) (*models.TeamStatistics, error) {
	var row *models.TeamStatistics
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		row, err = s.RecomputeExec(ctx, exec, teamID, tournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *standingService) RecomputeExec(ctx context.Context, exec repositories.SQLExecutor, teamID, tournamentID int) (*models.TeamStatistics, error) {
	matches, err := s.matchRepo.ListCompletedByTeam(ctx, exec, tournamentID, teamID)
	if err != nil {
		return nil, err
	}
	counts := standings.Compute(teamID, matches)

	yellow, red, err := s.cardRepo.CountByTeam(ctx, exec, teamID, tournamentID)
	if err != nil {
		return nil, err
	}

	row := &models.TeamStatistics{TeamID: teamID, TournamentID: tournamentID}
	counts.Apply(row)
	row.YellowCards = yellow
	row.RedCards = red

	if err := s.standingRepo.Upsert(ctx, exec, row); err != nil {
		return nil, err
	}
	s.logger.Debug("standings recomputed",
		slog.Int("team_id", teamID), slog.Int("tournament_id", tournamentID),
		slog.Int("played", row.Played), slog.Int("points", row.Points))
	return row, nil
}

func (s *standingService) Table(ctx context.Context, tournamentID int) (*TournamentTable, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTournamentNotFound, ErrTournamentNotFound)
	}

	table := &TournamentTable{TournamentID: tournamentID}
	for _, label := range tournament.GroupLabels() {
		rows, err := s.standingRepo.ListByGroup(ctx, nil, tournamentID, label)
		if err != nil {
			return nil, err
		}
		table.Groups = append(table.Groups, GroupTable{Label: label, Rows: rows})
	}

	overall, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	table.Overall = overall
	return table, nil
}

const defaultLeaderboardLimit = 10

func (s *standingService) TopScorers(ctx context.Context, tournamentID, limit int) ([]repositories.ScorerTally, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.goalRepo.TopScorers(ctx, nil, tournamentID, limit)
}

func (s *standingService) MostCarded(ctx context.Context, tournamentID, limit int) ([]repositories.CardTally, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.cardRepo.MostCarded(ctx, nil, tournamentID, limit)
}
