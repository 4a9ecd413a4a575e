package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mvallesteros/ligastar/repositories"
)

// TxRunner runs a function inside one database transaction. Services depend
// on the interface so engine logic can be exercised against in-memory
// repositories, where fn simply runs with a nil executor.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

func NewSQLTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = fn(tx); txErr != nil {
		return txErr
	}
	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit transaction: %w", txErr)
	}
	return nil
}

// Live event types pushed to tournament rooms after a transaction commits.
const (
	EventMatchCompleted   = "MATCH_COMPLETED"
	EventStandingsUpdated = "STANDINGS_UPDATED"
	EventTeamExcluded     = "TEAM_EXCLUDED"
	EventBracketAdvanced  = "BRACKET_ADVANCED"
)

// EventBroadcaster pushes an event to everyone watching a tournament. A nil
// broadcaster is valid and drops events.
type EventBroadcaster interface {
	BroadcastToTournament(tournamentID int, eventType string, payload interface{})
}

func broadcast(b EventBroadcaster, tournamentID int, eventType string, payload interface{}) {
	if b != nil {
		b.BroadcastToTournament(tournamentID, eventType, payload)
	}
}

func mapRepoNotFound(err error, notFound error, sentinel error) error {
	if errors.Is(err, notFound) {
		return sentinel
	}
	return err
}
