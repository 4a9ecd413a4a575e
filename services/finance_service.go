package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// FinanceService keeps the money ledger aligned with the disciplinary one:
// paying a fine flips the card's paid flag and writes the ledger row in one
// transaction.
type FinanceService interface {
	PayCardFine(ctx context.Context, cardID int, method models.PaymentMethod) (*models.PaymentTransaction, error)
	RecordInscriptionPayment(ctx context.Context, teamID int, amount decimal.Decimal, method models.PaymentMethod) (*models.PaymentTransaction, error)
	TeamSummary(ctx context.Context, teamID int) (*models.TeamFinanceSummary, error)
	ListTeamTransactions(ctx context.Context, teamID int) ([]models.PaymentTransaction, error)
}

type financeService struct {
	txRunner     TxRunner
	financeRepo  repositories.FinanceRepository
	cardRepo     repositories.CardRepository
	playerRepo   repositories.PlayerRepository
	teamRepo     repositories.TeamRepository
	categoryRepo repositories.CategoryRepository
	logger       *slog.Logger
}

func NewFinanceService(
	txRunner TxRunner,
	financeRepo repositories.FinanceRepository,
	cardRepo repositories.CardRepository,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	categoryRepo repositories.CategoryRepository,
	logger *slog.Logger,
) FinanceService {
	return &financeService{
		txRunner:     txRunner,
		financeRepo:  financeRepo,
		cardRepo:     cardRepo,
		playerRepo:   playerRepo,
		teamRepo:     teamRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *financeService) PayCardFine(ctx context.Context, cardID int, method models.PaymentMethod) (*models.PaymentTransaction, error) {
	var txn *models.PaymentTransaction
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		card, err := s.cardRepo.GetByID(ctx, exec, cardID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrCardNotFound, ErrCardNotFound)
		}
		if card.FinePaid {
			return ErrCardFineAlreadyPaid
		}
		player, err := s.playerRepo.GetByID(ctx, exec, card.PlayerID)
		if err != nil {
			return err
		}
		team, err := s.teamRepo.GetByID(ctx, exec, player.TeamID)
		if err != nil {
			return err
		}
		category, err := s.categoryRepo.GetByTournamentID(ctx, exec, team.TournamentID)
		if err != nil {
			return err
		}

		if err := s.cardRepo.MarkFinePaid(ctx, exec, cardID); err != nil {
			if errors.Is(err, repositories.ErrCardAlreadySettled) {
				return ErrCardFineAlreadyPaid
			}
			return err
		}

		txnType := models.TransactionYellowFine
		if card.Type == models.CardRed {
			txnType = models.TransactionRedFine
		}
		txn = &models.PaymentTransaction{
			Reference: uuid.NewString(),
			TeamID:    team.ID,
			PlayerID:  &player.ID,
			CardID:    &card.ID,
			Type:      txnType,
			Method:    method,
			Amount:    category.FineFor(card.Type),
			Income:    true,
		}
		return s.financeRepo.Create(ctx, exec, txn)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("card fine paid",
		slog.Int("card_id", cardID), slog.String("amount", txn.Amount.String()))
	return txn, nil
}

func (s *financeService) RecordInscriptionPayment(ctx context.Context, teamID int, amount decimal.Decimal, method models.PaymentMethod) (*models.PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}
	var txn *models.PaymentTransaction
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.teamRepo.GetByID(ctx, exec, teamID); err != nil {
			return mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
		}
		txn = &models.PaymentTransaction{
			Reference: uuid.NewString(),
			TeamID:    teamID,
			Type:      models.TransactionInscription,
			Method:    method,
			Amount:    amount,
			Income:    true,
		}
		return s.financeRepo.Create(ctx, exec, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *financeService) TeamSummary(ctx context.Context, teamID int) (*models.TeamFinanceSummary, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
	}
	category, err := s.categoryRepo.GetByTournamentID(ctx, nil, team.TournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrCategoryNotFound, ErrCategoryNotFound)
	}

	var (
		yellow, red         int
		inscriptionPaid     decimal.Decimal
		yellowPaid, redPaid decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		yellow, red, err = s.cardRepo.CountByTeam(gctx, nil, teamID, team.TournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		inscriptionPaid, err = s.financeRepo.SumByTeamAndType(gctx, nil, teamID, models.TransactionInscription)
		return err
	})
	g.Go(func() error {
		var err error
		yellowPaid, err = s.financeRepo.SumByTeamAndType(gctx, nil, teamID, models.TransactionYellowFine)
		return err
	})
	g.Go(func() error {
		var err error
		redPaid, err = s.financeRepo.SumByTeamAndType(gctx, nil, teamID, models.TransactionRedFine)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load finance summary for team %d: %w", teamID, err)
	}

	finesAccrued := category.YellowCardFine.Mul(decimal.NewFromInt(int64(yellow))).
		Add(category.RedCardFine.Mul(decimal.NewFromInt(int64(red))))
	finesPaid := yellowPaid.Add(redPaid)

	return &models.TeamFinanceSummary{
		TeamID:          teamID,
		InscriptionCost: category.InscriptionCost,
		InscriptionPaid: inscriptionPaid,
		FinesAccrued:    finesAccrued,
		FinesPaid:       finesPaid,
		Balance:         inscriptionPaid.Add(finesPaid).Sub(category.InscriptionCost.Add(finesAccrued)),
	}, nil
}

func (s *financeService) ListTeamTransactions(ctx context.Context, teamID int) ([]models.PaymentTransaction, error) {
	return s.financeRepo.ListByTeam(ctx, nil, teamID)
}
