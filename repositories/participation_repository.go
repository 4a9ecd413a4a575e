package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mvallesteros/ligastar/models"
)

var (
	ErrParticipationInvalid   = errors.New("participation player or match invalid")
	ErrParticipationDuplicate = errors.New("player already on the match sheet")
)

type ParticipationRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, entries []models.Participation) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Participation, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresParticipationRepository struct {
	db *sql.DB
}

func NewPostgresParticipationRepository(db *sql.DB) ParticipationRepository {
	return &postgresParticipationRepository{db: db}
}

func (r *postgresParticipationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipationRepository) BatchCreate(ctx context.Context, exec SQLExecutor, entries []models.Participation) error {
	if len(entries) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participations (match_id, player_id, starter, jersey_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range entries {
		e := &entries[i]
		err := executor.QueryRowContext(ctx, query, e.MatchID, e.PlayerID, e.Starter, e.JerseyNumber).Scan(&e.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) {
				switch pqErr.Code {
				case "23503":
					return ErrParticipationInvalid
				case "23505":
					return fmt.Errorf("%w: player %d", ErrParticipationDuplicate, e.PlayerID)
				}
			}
			return fmt.Errorf("failed to create participation for player %d: %w", e.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresParticipationRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Participation, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, player_id, starter, jersey_number
		FROM participations WHERE match_id = $1
		ORDER BY id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations of match %d: %w", matchID, err)
	}
	defer rows.Close()

	var entries []models.Participation
	for rows.Next() {
		var e models.Participation
		if err := rows.Scan(&e.ID, &e.MatchID, &e.PlayerID, &e.Starter, &e.JerseyNumber); err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresParticipationRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM participations WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete participations of match %d: %w", matchID, err)
	}
	return nil
}
