package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mvallesteros/ligastar/models"
)

var ErrStandingNotFound = errors.New("team statistics not found")

type StandingRepository interface {
	GetByTeamAndTournament(ctx context.Context, exec SQLExecutor, teamID, tournamentID int) (*models.TeamStatistics, error)
	// Upsert writes the row wholesale, creating it if absent. The row is
	// derived state, so there is no partial update path.
	Upsert(ctx context.Context, exec SQLExecutor, stats *models.TeamStatistics) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TeamStatistics, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]models.TeamStatistics, error)
	DeleteByTeamAndTournament(ctx context.Context, exec SQLExecutor, teamID, tournamentID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `
	id, team_id, tournament_id, played, wins, draws, losses,
	goals_for, goals_against, goal_difference, points,
	yellow_cards, red_cards, updated_at
`

// standingOrder is the league tie-break key order; ascending team ID keeps a
// full three-way tie deterministic.
const standingOrder = `ORDER BY points DESC, goal_difference DESC, goals_for DESC, team_id ASC`

func (r *postgresStandingRepository) scanStanding(scanner interface{ Scan(...interface{}) error }) (*models.TeamStatistics, error) {
	var s models.TeamStatistics
	err := scanner.Scan(
		&s.ID, &s.TeamID, &s.TournamentID, &s.Played, &s.Wins, &s.Draws, &s.Losses,
		&s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference, &s.Points,
		&s.YellowCards, &s.RedCards, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, fmt.Errorf("failed to scan team statistics: %w", err)
	}
	return &s, nil
}

func (r *postgresStandingRepository) GetByTeamAndTournament(ctx context.Context, exec SQLExecutor, teamID, tournamentID int) (*models.TeamStatistics, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + standingColumns + `FROM team_statistics WHERE team_id = $1 AND tournament_id = $2`
	return r.scanStanding(executor.QueryRowContext(ctx, query, teamID, tournamentID))
}

func (r *postgresStandingRepository) Upsert(ctx context.Context, exec SQLExecutor, stats *models.TeamStatistics) error {
	executor := r.getExecutor(exec)
	stats.UpdatedAt = time.Now()
	query := `
		INSERT INTO team_statistics
			(team_id, tournament_id, played, wins, draws, losses,
			 goals_for, goals_against, goal_difference, points,
			 yellow_cards, red_cards, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (team_id, tournament_id) DO UPDATE SET
			played = EXCLUDED.played, wins = EXCLUDED.wins, draws = EXCLUDED.draws,
			losses = EXCLUDED.losses, goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against, goal_difference = EXCLUDED.goal_difference,
			points = EXCLUDED.points, yellow_cards = EXCLUDED.yellow_cards,
			red_cards = EXCLUDED.red_cards, updated_at = EXCLUDED.updated_at
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		stats.TeamID, stats.TournamentID, stats.Played, stats.Wins, stats.Draws, stats.Losses,
		stats.GoalsFor, stats.GoalsAgainst, stats.GoalDifference, stats.Points,
		stats.YellowCards, stats.RedCards, stats.UpdatedAt,
	).Scan(&stats.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert team statistics for team %d: %w", stats.TeamID, err)
	}
	return nil
}

func (r *postgresStandingRepository) listStandings(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.TeamStatistics, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list team statistics: %w", err)
	}
	defer rows.Close()

	var standings []models.TeamStatistics
	for rows.Next() {
		s, err := r.scanStanding(rows)
		if err != nil {
			return nil, err
		}
		standings = append(standings, *s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TeamStatistics, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + standingColumns + `FROM team_statistics WHERE tournament_id = $1 ` + standingOrder
	return r.listStandings(ctx, executor, query, tournamentID)
}

func (r *postgresStandingRepository) ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]models.TeamStatistics, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT s.id, s.team_id, s.tournament_id, s.played, s.wins, s.draws, s.losses,
		       s.goals_for, s.goals_against, s.goal_difference, s.points,
		       s.yellow_cards, s.red_cards, s.updated_at
		FROM team_statistics s
		JOIN teams t ON t.id = s.team_id
		WHERE s.tournament_id = $1 AND t.group_label = $2
		ORDER BY s.points DESC, s.goal_difference DESC, s.goals_for DESC, s.team_id ASC`
	return r.listStandings(ctx, executor, query, tournamentID, groupLabel)
}

func (r *postgresStandingRepository) DeleteByTeamAndTournament(ctx context.Context, exec SQLExecutor, teamID, tournamentID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM team_statistics WHERE team_id = $1 AND tournament_id = $2`, teamID, tournamentID); err != nil {
		return fmt.Errorf("failed to delete team statistics for team %d: %w", teamID, err)
	}
	return nil
}
