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
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name already taken in tournament")
	ErrTeamTournamentInvalid = errors.New("team tournament invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Team, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]models.Team, error)
	Update(ctx context.Context, exec SQLExecutor, team *models.Team) error
	IncrementAbsences(ctx context.Context, exec SQLExecutor, id int) (int, error)
	MarkExcluded(ctx context.Context, exec SQLExecutor, id int) error
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, key *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `
	id, tournament_id, name, group_label, contact_email, active,
	absences, excluded, logo_key, created_at
`

func (r *postgresTeamRepository) handleError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return ErrTeamTournamentInvalid
		case "23505":
			return ErrTeamNameConflict
		}
	}
	return err
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (tournament_id, name, group_label, contact_email, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, absences, excluded, created_at`

	err := executor.QueryRowContext(ctx, query,
		team.TournamentID,
		team.Name,
		team.GroupLabel,
		team.ContactEmail,
		team.Active,
	).Scan(&team.ID, &team.Absences, &team.Excluded, &team.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create team: %w", r.handleError(err))
	}
	return nil
}

func (r *postgresTeamRepository) scanTeam(scanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := scanner.Scan(
		&t.ID, &t.TournamentID, &t.Name, &t.GroupLabel, &t.ContactEmail,
		&t.Active, &t.Absences, &t.Excluded, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + teamColumns + `FROM teams WHERE id = $1`
	return r.scanTeam(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) listByQuery(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Team, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		t, err := r.scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Team, error) {
	query := `SELECT` + teamColumns + `FROM teams WHERE tournament_id = $1 ORDER BY group_label NULLS LAST, name`
	return r.listByQuery(ctx, r.getExecutor(exec), query, tournamentID)
}

func (r *postgresTeamRepository) ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]models.Team, error) {
	query := `SELECT` + teamColumns + `FROM teams WHERE tournament_id = $1 AND group_label = $2 ORDER BY name`
	return r.listByQuery(ctx, r.getExecutor(exec), query, tournamentID, groupLabel)
}

func (r *postgresTeamRepository) Update(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams SET
			name = $1, group_label = $2, contact_email = $3, active = $4,
			absences = $5, excluded = $6
		WHERE id = $7`

	result, err := executor.ExecContext(ctx, query,
		team.Name,
		team.GroupLabel,
		team.ContactEmail,
		team.Active,
		team.Absences,
		team.Excluded,
		team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team %d: %w", team.ID, r.handleError(err))
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// IncrementAbsences bumps the walkover counter atomically and returns the new
// value, so the caller can compare it against the category limit without a
// read-modify-write race.
func (r *postgresTeamRepository) IncrementAbsences(ctx context.Context, exec SQLExecutor, id int) (int, error) {
	executor := r.getExecutor(exec)
	var absences int
	err := executor.QueryRowContext(ctx,
		`UPDATE teams SET absences = absences + 1 WHERE id = $1 RETURNING absences`, id,
	).Scan(&absences)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTeamNotFound
		}
		return 0, fmt.Errorf("failed to increment absences for team %d: %w", id, err)
	}
	return absences, nil
}

func (r *postgresTeamRepository) MarkExcluded(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE teams SET excluded = TRUE, active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark team %d excluded: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, key *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update team %d logo key: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
