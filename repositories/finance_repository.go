package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mvallesteros/ligastar/models"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrTransactionInvalid  = errors.New("payment transaction reference invalid")
)

type FinanceRepository interface {
	Create(ctx context.Context, exec SQLExecutor, txn *models.PaymentTransaction) error
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.PaymentTransaction, error)
	// SumByTeamAndType totals the amounts of a team's transactions of one
	// type, zero when there are none.
	SumByTeamAndType(ctx context.Context, exec SQLExecutor, teamID int, txnType models.TransactionType) (decimal.Decimal, error)
}

type postgresFinanceRepository struct {
	db *sql.DB
}

func NewPostgresFinanceRepository(db *sql.DB) FinanceRepository {
	return &postgresFinanceRepository{db: db}
}

func (r *postgresFinanceRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresFinanceRepository) Create(ctx context.Context, exec SQLExecutor, txn *models.PaymentTransaction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO payment_transactions
			(reference, team_id, player_id, card_id, type, method, amount, income, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		txn.Reference, txn.TeamID, txn.PlayerID, txn.CardID,
		txn.Type, txn.Method, txn.Amount, txn.Income, txn.Notes,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrTransactionInvalid
		}
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

func (r *postgresFinanceRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.PaymentTransaction, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, reference, team_id, player_id, card_id, type, method, amount, income, notes, created_at
		FROM payment_transactions WHERE team_id = $1
		ORDER BY created_at, id`

	rows, err := executor.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment transactions of team %d: %w", teamID, err)
	}
	defer rows.Close()

	var txns []models.PaymentTransaction
	for rows.Next() {
		var t models.PaymentTransaction
		err := rows.Scan(&t.ID, &t.Reference, &t.TeamID, &t.PlayerID, &t.CardID,
			&t.Type, &t.Method, &t.Amount, &t.Income, &t.Notes, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *postgresFinanceRepository) SumByTeamAndType(ctx context.Context, exec SQLExecutor, teamID int, txnType models.TransactionType) (decimal.Decimal, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_transactions
		WHERE team_id = $1 AND type = $2`

	var sum decimal.Decimal
	if err := executor.QueryRowContext(ctx, query, teamID, txnType).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s transactions of team %d: %w", txnType, teamID, err)
	}
	return sum, nil
}
