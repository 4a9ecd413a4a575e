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
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// GetByIDForUpdate locks the match row for the lifetime of the
	// surrounding transaction, serializing concurrent completions of the
	// same match.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]models.Match, error)
	ListCompletedByTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) ([]models.Match, error)
	ListScheduledByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Match, error)
	CountUnfinishedGroupMatches(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Reopen(ctx context.Context, exec SQLExecutor, id int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

// MatchFilter narrows tournament match listings. Nil fields match anything.
type MatchFilter struct {
	GroupRound *int
	PhaseID    *int
	Status     *models.MatchStatus
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, home_team_id, away_team_id, group_round, phase_id,
	status, home_goals, away_goals, home_penalties, away_penalties,
	walkover_reason, walkover_winner_id, kickoff_at, created_at
`

func (r *postgresMatchRepository) handleError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrMatchTeamInvalid
	}
	return err
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, home_team_id, away_team_id, group_round, phase_id, status, kickoff_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	if match.Status == "" {
		match.Status = models.MatchStatusScheduled
	}
	err := executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.HomeTeamID,
		match.AwayTeamID,
		match.GroupRound,
		match.PhaseID,
		match.Status,
		match.KickoffAt,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		if mapped := r.handleError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(scanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := scanner.Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &m.GroupRound, &m.PhaseID,
		&m.Status, &m.HomeGoals, &m.AwayGoals, &m.HomePenalties, &m.AwayPenalties,
		&m.WalkoverReason, &m.WalkoverWinnerID, &m.KickoffAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + `FROM matches WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + `FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) listMatches(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + `FROM matches
		WHERE tournament_id = $1
		  AND ($2::int IS NULL OR group_round = $2)
		  AND ($3::int IS NULL OR phase_id = $3)
		  AND ($4::text IS NULL OR status = $4)
		ORDER BY kickoff_at, id`
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	return r.listMatches(ctx, executor, query, tournamentID, filter.GroupRound, filter.PhaseID, status)
}

func (r *postgresMatchRepository) ListCompletedByTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + `FROM matches
		WHERE tournament_id = $1
		  AND (home_team_id = $2 OR away_team_id = $2)
		  AND status = $3
		ORDER BY kickoff_at, id`
	return r.listMatches(ctx, executor, query, tournamentID, teamID, models.MatchStatusCompleted)
}

func (r *postgresMatchRepository) ListScheduledByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + `FROM matches
		WHERE (home_team_id = $1 OR away_team_id = $1) AND status = $2
		ORDER BY kickoff_at, id`
	return r.listMatches(ctx, executor, query, teamID, models.MatchStatusScheduled)
}

func (r *postgresMatchRepository) CountUnfinishedGroupMatches(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COUNT(*) FROM matches
		WHERE tournament_id = $1 AND group_round IS NOT NULL AND status <> $2`

	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID, models.MatchStatusCompleted).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unfinished group matches: %w", err)
	}
	return count, nil
}

// UpdateResult writes the full result block of the match: status, scores,
// penalties and walkover fields, all from the in-memory row.
func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			status = $1, home_goals = $2, away_goals = $3,
			home_penalties = $4, away_penalties = $5,
			walkover_reason = $6, walkover_winner_id = $7
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		match.Status,
		match.HomeGoals,
		match.AwayGoals,
		match.HomePenalties,
		match.AwayPenalties,
		match.WalkoverReason,
		match.WalkoverWinnerID,
		match.ID,
	)
	if err != nil {
		if mapped := r.handleError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update match %d result: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// Reopen puts a completed match back to scheduled and clears its result
// fields. The caller owns the statistics recompute that has to follow.
func (r *postgresMatchRepository) Reopen(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			status = $1, home_goals = NULL, away_goals = NULL,
			home_penalties = NULL, away_penalties = NULL,
			walkover_reason = NULL, walkover_winner_id = NULL
		WHERE id = $2`

	result, err := executor.ExecContext(ctx, query, models.MatchStatusScheduled, id)
	if err != nil {
		return fmt.Errorf("failed to reopen match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
