package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mvallesteros/ligastar/models"
)

var ErrGoalPlayerInvalid = errors.New("goal player or match invalid")

// ScorerTally is a per-player goal count for the top-scorer leaderboard.
// Own goals are excluded.
type ScorerTally struct {
	PlayerID int `json:"player_id"`
	TeamID   int `json:"team_id"`
	Goals    int `json:"goals"`
}

type GoalRepository interface {
	Create(ctx context.Context, exec SQLExecutor, goal *models.Goal) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Goal, error)
	TopScorers(ctx context.Context, exec SQLExecutor, tournamentID, limit int) ([]ScorerTally, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresGoalRepository struct {
	db *sql.DB
}

func NewPostgresGoalRepository(db *sql.DB) GoalRepository {
	return &postgresGoalRepository{db: db}
}

func (r *postgresGoalRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGoalRepository) Create(ctx context.Context, exec SQLExecutor, goal *models.Goal) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO goals (match_id, player_id, minute, own_goal)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		goal.MatchID,
		goal.PlayerID,
		goal.Minute,
		goal.OwnGoal,
	).Scan(&goal.ID, &goal.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrGoalPlayerInvalid
		}
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (r *postgresGoalRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Goal, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, player_id, minute, own_goal, created_at
		FROM goals WHERE match_id = $1
		ORDER BY minute NULLS LAST, id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals of match %d: %w", matchID, err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.MatchID, &g.PlayerID, &g.Minute, &g.OwnGoal, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *postgresGoalRepository) TopScorers(ctx context.Context, exec SQLExecutor, tournamentID, limit int) ([]ScorerTally, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT g.player_id, p.team_id, COUNT(*) AS goals
		FROM goals g
		JOIN players p ON p.id = g.player_id
		JOIN matches m ON m.id = g.match_id
		WHERE m.tournament_id = $1 AND g.own_goal = FALSE
		GROUP BY g.player_id, p.team_id
		ORDER BY goals DESC, g.player_id
		LIMIT $2`

	rows, err := executor.QueryContext(ctx, query, tournamentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top scorers: %w", err)
	}
	defer rows.Close()

	var tallies []ScorerTally
	for rows.Next() {
		var t ScorerTally
		if err := rows.Scan(&t.PlayerID, &t.TeamID, &t.Goals); err != nil {
			return nil, fmt.Errorf("failed to scan scorer tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

func (r *postgresGoalRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM goals WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete goals of match %d: %w", matchID, err)
	}
	return nil
}
