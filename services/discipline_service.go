package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
)

// RecordCardResult reports the booking and whether it left the player
// suspended.
type RecordCardResult struct {
	Card      *models.Card `json:"card"`
	Suspended bool         `json:"suspended"`
}

// DisciplineService is the disciplinary ledger: it turns card issuance into
// suspension state and tracks how suspensions are served. All writes to the
// player suspension fields happen here.
type DisciplineService interface {
	// RecordCard books a card for a player in a match and applies the
	// category's suspension rules, in its own transaction.
	RecordCard(ctx context.Context, playerID, matchID int, cardType models.CardType, minute *int) (*RecordCardResult, error)

	// RecordCardExec is RecordCard inside a caller-owned transaction, with
	// the match, its category and the player already loaded and validated
	// to belong to one of the match teams.
	RecordCardExec(ctx context.Context, exec repositories.SQLExecutor, player *models.Player, match *models.Match, category *models.Category, cardType models.CardType, minute *int) (*RecordCardResult, error)

	// ReleaseServed decrements the remaining-matches counter of every
	// suspended player in the list and lifts suspensions that reach zero,
	// clearing the end date with the flag. It returns the IDs of players
	// whose state changed.
	ReleaseServed(ctx context.Context, exec repositories.SQLExecutor, players []models.Player) ([]int, error)
}

type disciplineService struct {
	txRunner     TxRunner
	playerRepo   repositories.PlayerRepository
	matchRepo    repositories.MatchRepository
	cardRepo     repositories.CardRepository
	categoryRepo repositories.CategoryRepository
	logger       *slog.Logger
}

func NewDisciplineService(
	txRunner TxRunner,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	cardRepo repositories.CardRepository,
	categoryRepo repositories.CategoryRepository,
	logger *slog.Logger,
) DisciplineService {
	return &disciplineService{
		txRunner:     txRunner,
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		cardRepo:     cardRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *disciplineService) RecordCard(ctx context.Context, playerID, matchID int, cardType models.CardType, minute *int) (*RecordCardResult, error) {
	var result *RecordCardResult
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		player, err := s.playerRepo.GetByID(ctx, exec, playerID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrPlayerNotFound, ErrPlayerNotFound)
		}
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrMatchNotFound, ErrMatchNotFound)
		}
		if !match.HasTeam(player.TeamID) {
			return fmt.Errorf("%w: player %d, match %d", ErrPlayerNotInMatch, playerID, matchID)
		}
		category, err := s.categoryRepo.GetByTournamentID(ctx, exec, match.TournamentID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrCategoryNotFound, ErrCategoryNotFound)
		}

		result, err = s.RecordCardExec(ctx, exec, player, match, category, cardType, minute)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *disciplineService) RecordCardExec(ctx context.Context, exec repositories.SQLExecutor, player *models.Player, match *models.Match, category *models.Category, cardType models.CardType, minute *int) (*RecordCardResult, error) {
	if cardType != models.CardYellow && cardType != models.CardRed {
		return nil, fmt.Errorf("%w: unknown card type %q", ErrValidationFailed, cardType)
	}

	card := &models.Card{
		PlayerID: player.ID,
		MatchID:  match.ID,
		Type:     cardType,
		Minute:   minute,
	}
	if err := s.cardRepo.Create(ctx, exec, card); err != nil {
		return nil, err
	}

	switch cardType {
	case models.CardRed:
		// A red card suspends on its own; the booking is consumed
		// immediately.
		if err := s.suspend(ctx, exec, player, category.RedSuspensionMatches); err != nil {
			return nil, err
		}
		card.Counted = true
		if err := s.cardRepo.MarkCounted(ctx, exec, []int{card.ID}); err != nil {
			return nil, err
		}
		s.logger.Info("player suspended for red card",
			slog.Int("player_id", player.ID), slog.Int("match_id", match.ID))

	case models.CardYellow:
		uncounted, err := s.cardRepo.ListUncountedYellow(ctx, exec, player.ID, match.TournamentID)
		if err != nil {
			return nil, err
		}
		if len(uncounted) >= category.YellowCardLimit {
			if err := s.suspend(ctx, exec, player, category.YellowSuspensionMatches); err != nil {
				return nil, err
			}
			ids := make([]int, 0, len(uncounted))
			for _, c := range uncounted {
				ids = append(ids, c.ID)
			}
			// Consume the whole group so these yellows can never
			// trigger a second suspension.
			if err := s.cardRepo.MarkCounted(ctx, exec, ids); err != nil {
				return nil, err
			}
			card.Counted = true
			s.logger.Info("player suspended for accumulated yellow cards",
				slog.Int("player_id", player.ID), slog.Int("cards", len(uncounted)))
		}
	}

	return &RecordCardResult{Card: card, Suspended: player.Suspended}, nil
}

// suspend marks the player suspended for the given number of matches. A
// player sanctioned while already suspended serves the sanctions back to
// back.
func (s *disciplineService) suspend(ctx context.Context, exec repositories.SQLExecutor, player *models.Player, matches int) error {
	player.Suspended = true
	player.SuspensionMatchesLeft += matches
	return s.playerRepo.UpdateSuspension(ctx, exec, player)
}

func (s *disciplineService) ReleaseServed(ctx context.Context, exec repositories.SQLExecutor, players []models.Player) ([]int, error) {
	var changed []int
	for i := range players {
		p := &players[i]
		if !p.Suspended || p.SuspensionMatchesLeft < 1 {
			continue
		}
		p.SuspensionMatchesLeft--
		if p.SuspensionMatchesLeft == 0 {
			p.Suspended = false
			p.SuspensionEndsAt = nil
		}
		if err := s.playerRepo.UpdateSuspension(ctx, exec, p); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, ErrPlayerNotFound
			}
			return nil, err
		}
		changed = append(changed, p.ID)
	}
	return changed, nil
}
