package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvallesteros/ligastar/brackets"
	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
	"github.com/mvallesteros/ligastar/standings"
)

// QualifiersResult lists who advances from group play: the top teams of each
// group in rank order, plus best losers ranked across groups.
type QualifiersResult struct {
	TournamentID int                        `json:"tournament_id"`
	Groups       []brackets.GroupQualifiers `json:"groups"`
	BestLosers   []int                      `json:"best_losers,omitempty"`
}

// QualificationService resolves group-stage qualifiers once every group
// match is completed.
type QualificationService interface {
	ResolveQualifiers(ctx context.Context, tournamentID int) (*QualifiersResult, error)
}

type qualificationService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	logger         *slog.Logger
}

func NewQualificationService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	logger *slog.Logger,
) QualificationService {
	return &qualificationService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		logger:         logger,
	}
}

func (s *qualificationService) ResolveQualifiers(ctx context.Context, tournamentID int) (*QualifiersResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTournamentNotFound, ErrTournamentNotFound)
	}

	unfinished, err := s.matchRepo.CountUnfinishedGroupMatches(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if unfinished > 0 {
		return nil, fmt.Errorf("%w: %d matches pending", ErrGroupStageIncomplete, unfinished)
	}

	result := &QualifiersResult{TournamentID: tournamentID}

	// The first excluded slot of each group competes for the best-loser
	// berths in a cross-group ranking under the same key order.
	var loserCandidates []models.TeamStatistics
	for _, label := range tournament.GroupLabels() {
		rows, err := s.standingRepo.ListByGroup(ctx, nil, tournamentID, label)
		if err != nil {
			return nil, err
		}
		// Rows arrive in storage tie-break order already; re-rank in
		// memory so the selection does not depend on it.
		standings.Rank(rows)

		take := tournament.QualifiersPerGroup
		if take > len(rows) {
			take = len(rows)
		}
		group := brackets.GroupQualifiers{Label: label}
		for _, row := range rows[:take] {
			group.TeamIDs = append(group.TeamIDs, row.TeamID)
		}
		result.Groups = append(result.Groups, group)

		if tournament.BestLoserSlots > 0 && len(rows) > take {
			loserCandidates = append(loserCandidates, rows[take])
		}
	}

	if tournament.BestLoserSlots > 0 {
		standings.Rank(loserCandidates)
		berths := tournament.BestLoserSlots
		if berths > len(loserCandidates) {
			berths = len(loserCandidates)
		}
		for _, row := range loserCandidates[:berths] {
			result.BestLosers = append(result.BestLosers, row.TeamID)
		}
	}

	s.logger.Info("qualifiers resolved",
		slog.Int("tournament_id", tournamentID),
		slog.Int("groups", len(result.Groups)),
		slog.Int("best_losers", len(result.BestLosers)))
	return result, nil
}
