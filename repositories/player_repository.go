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
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerTeamInvalid    = errors.New("player team invalid")
	ErrPlayerJerseyConflict = errors.New("jersey number already taken in team")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error)
	ListByTeams(ctx context.Context, exec SQLExecutor, teamIDs []int) ([]models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdateSuspension(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdatePhotoKey(ctx context.Context, exec SQLExecutor, id int, key *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `
	id, team_id, first_name, last_name, jersey_number, suspended,
	suspension_matches_left, suspension_ends_at, photo_key, created_at
`

func (r *postgresPlayerRepository) handleError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return ErrPlayerTeamInvalid
		case "23505":
			return ErrPlayerJerseyConflict
		}
	}
	return err
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (team_id, first_name, last_name, jersey_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		player.TeamID,
		player.FirstName,
		player.LastName,
		player.JerseyNumber,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		if mapped := r.handleError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(scanner interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := scanner.Scan(
		&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.JerseyNumber,
		&p.Suspended, &p.SuspensionMatchesLeft, &p.SuspensionEndsAt,
		&p.PhotoKey, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + playerColumns + `FROM players WHERE id = $1`
	return r.scanPlayer(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error) {
	return r.ListByTeams(ctx, exec, []int{teamID})
}

func (r *postgresPlayerRepository) ListByTeams(ctx context.Context, exec SQLExecutor, teamIDs []int) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + playerColumns + `FROM players WHERE team_id = ANY($1) ORDER BY team_id, jersey_number`

	rows, err := executor.QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := r.scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE players SET
			team_id = $1, first_name = $2, last_name = $3, jersey_number = $4
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query,
		player.TeamID,
		player.FirstName,
		player.LastName,
		player.JerseyNumber,
		player.ID,
	)
	if err != nil {
		if mapped := r.handleError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// UpdateSuspension persists only the discipline fields. Identity and roster
// fields are untouched so the discipline service can run with a stale view of
// them without clobbering concurrent edits.
func (r *postgresPlayerRepository) UpdateSuspension(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE players SET
			suspended = $1, suspension_matches_left = $2, suspension_ends_at = $3
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query,
		player.Suspended,
		player.SuspensionMatchesLeft,
		player.SuspensionEndsAt,
		player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update suspension for player %d: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, exec SQLExecutor, id int, key *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE players SET photo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update photo key for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
