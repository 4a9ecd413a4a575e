package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvallesteros/ligastar/brackets"
	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
)

// AdvanceResult reports a slot advancement: the decided slot, the next-round
// slot that received the winner, and the champion when the final just
// resolved.
type AdvanceResult struct {
	Slot           *models.BracketSlot `json:"slot"`
	NextSlot       *models.BracketSlot `json:"next_slot,omitempty"`
	ChampionTeamID *int                `json:"champion_team_id,omitempty"`
}

// BracketService manages elimination play: seeding the bracket from
// qualifier pairs, generating slot matches, and propagating winners.
type BracketService interface {
	// SeedBracket creates the entry phase from the given pairs, all later
	// phases with empty slots, and fails if the tournament already has a
	// bracket.
	SeedBracket(ctx context.Context, tournamentID int, pairs []brackets.Pair) ([]models.EliminationPhase, error)

	// GenerateSlotMatch creates the match of a filled slot. It is
	// idempotent: a slot that already has a match is returned unchanged.
	GenerateSlotMatch(ctx context.Context, slotID int, kickoffAt *time.Time) (*models.BracketSlot, error)

	// AdvanceWinner reads the slot's completed match and pushes the winner
	// into the next round's slot.
	AdvanceWinner(ctx context.Context, slotID int) (*AdvanceResult, error)

	PhaseOverview(ctx context.Context, tournamentID int) ([]PhaseView, error)
}

// PhaseView is one elimination round with its slots, for the bracket page.
type PhaseView struct {
	Phase models.EliminationPhase `json:"phase"`
	Slots []models.BracketSlot    `json:"slots"`
}

type bracketService struct {
	txRunner    TxRunner
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	teamRepo    repositories.TeamRepository
	broadcaster EventBroadcaster
	logger      *slog.Logger
}

func NewBracketService(
	txRunner TxRunner,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		txRunner:    txRunner,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		teamRepo:    teamRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *bracketService) SeedBracket(ctx context.Context, tournamentID int, pairs []brackets.Pair) ([]models.EliminationPhase, error) {
	entry, err := brackets.EntryPhase(len(pairs))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	var phases []models.EliminationPhase
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		existing, err := s.bracketRepo.ListPhases(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrBracketAlreadySeeded
		}

		slotCount := len(pairs)
		for order, name := range brackets.PhasesFrom(entry) {
			phase := models.EliminationPhase{
				TournamentID: tournamentID,
				Name:         name,
				Order:        order + 1,
			}
			if err := s.bracketRepo.CreatePhase(ctx, exec, &phase); err != nil {
				return err
			}

			for pos := 1; pos <= slotCount; pos++ {
				slot := models.BracketSlot{PhaseID: phase.ID, Position: pos}
				if order == 0 {
					pair := pairs[pos-1]
					home, away := pair.Home, pair.Away
					slot.HomeTeamID, slot.AwayTeamID = &home, &away
				}
				if err := s.bracketRepo.CreateSlot(ctx, exec, &slot); err != nil {
					return err
				}
			}
			phases = append(phases, phase)
			slotCount = brackets.SlotCount(slotCount)
			if slotCount == 0 {
				slotCount = 1
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bracket seeded",
		slog.Int("tournament_id", tournamentID),
		slog.String("entry_phase", string(entry)),
		slog.Int("pairs", len(pairs)))
	return phases, nil
}

func (s *bracketService) GenerateSlotMatch(ctx context.Context, slotID int, kickoffAt *time.Time) (*models.BracketSlot, error) {
	var slot *models.BracketSlot
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		slot, err = s.bracketRepo.GetSlotByIDForUpdate(ctx, exec, slotID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrSlotNotFound, ErrSlotNotFound)
		}
		if slot.MatchID != nil {
			// Already generated; the call is a no-op.
			return nil
		}
		if !slot.Filled() {
			return fmt.Errorf("%w: slot %d", ErrSlotNotFilled, slotID)
		}

		phase, err := s.bracketRepo.GetPhaseByID(ctx, exec, slot.PhaseID)
		if err != nil {
			return err
		}

		kickoff := time.Now().Add(15 * time.Minute)
		if kickoffAt != nil {
			kickoff = *kickoffAt
		}
		phaseID := phase.ID
		match := &models.Match{
			TournamentID: phase.TournamentID,
			HomeTeamID:   *slot.HomeTeamID,
			AwayTeamID:   *slot.AwayTeamID,
			PhaseID:      &phaseID,
			Status:       models.MatchStatusScheduled,
			KickoffAt:    kickoff,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return err
		}
		slot.MatchID = &match.ID
		slot.Match = match
		return s.bracketRepo.UpdateSlot(ctx, exec, slot)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *bracketService) AdvanceWinner(ctx context.Context, slotID int) (*AdvanceResult, error) {
	var (
		result       *AdvanceResult
		tournamentID int
	)
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		slot, err := s.bracketRepo.GetSlotByIDForUpdate(ctx, exec, slotID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrSlotNotFound, ErrSlotNotFound)
		}
		if slot.Completed {
			return ErrSlotAlreadyAdvanced
		}
		if slot.MatchID == nil {
			return fmt.Errorf("%w: no match generated", ErrSlotNotDecided)
		}
		match, err := s.matchRepo.GetByID(ctx, exec, *slot.MatchID)
		if err != nil {
			return err
		}
		winnerID, ok := match.WinnerTeamID()
		if !ok {
			return fmt.Errorf("%w: match %d", ErrSlotNotDecided, match.ID)
		}

		phase, err := s.bracketRepo.GetPhaseByID(ctx, exec, slot.PhaseID)
		if err != nil {
			return err
		}
		tournamentID = phase.TournamentID

		slot.Completed = true
		if err := s.bracketRepo.UpdateSlot(ctx, exec, slot); err != nil {
			return err
		}
		if err := s.completePhaseIfDone(ctx, exec, phase); err != nil {
			return err
		}

		result = &AdvanceResult{Slot: slot}
		if phase.Name == models.PhaseFinal {
			// The final decided the tournament; flipping the tournament
			// phase to finished stays with the organizer.
			result.ChampionTeamID = &winnerID
			return nil
		}

		phases, err := s.bracketRepo.ListPhases(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		var next *models.EliminationPhase
		for i := range phases {
			if phases[i].Order == phase.Order+1 {
				next = &phases[i]
				break
			}
		}
		if next == nil {
			return fmt.Errorf("%w: after %s", ErrPhaseNotFound, phase.Name)
		}

		nextSlot, err := s.bracketRepo.GetSlotByPosition(ctx, exec, next.ID, brackets.NextPosition(slot.Position))
		if err != nil {
			return err
		}
		if brackets.FeedsHome(slot.Position) {
			nextSlot.HomeTeamID = &winnerID
		} else {
			nextSlot.AwayTeamID = &winnerID
		}
		if err := s.bracketRepo.UpdateSlot(ctx, exec, nextSlot); err != nil {
			return err
		}
		result.NextSlot = nextSlot
		return nil
	})
	if err != nil {
		return nil, err
	}

	broadcast(s.broadcaster, tournamentID, EventBracketAdvanced, result)
	s.logger.Info("bracket slot advanced", slog.Int("slot_id", slotID))
	return result, nil
}

func (s *bracketService) completePhaseIfDone(ctx context.Context, exec repositories.SQLExecutor, phase *models.EliminationPhase) error {
	slots, err := s.bracketRepo.ListSlotsByPhase(ctx, exec, phase.ID)
	if err != nil {
		return err
	}
	for _, sl := range slots {
		if !sl.Completed {
			return nil
		}
	}
	return s.bracketRepo.MarkPhaseCompleted(ctx, exec, phase.ID)
}

func (s *bracketService) PhaseOverview(ctx context.Context, tournamentID int) ([]PhaseView, error) {
	phases, err := s.bracketRepo.ListPhases(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	views := make([]PhaseView, 0, len(phases))
	for _, phase := range phases {
		slots, err := s.bracketRepo.ListSlotsByPhase(ctx, nil, phase.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, PhaseView{Phase: phase, Slots: slots})
	}
	return views, nil
}
