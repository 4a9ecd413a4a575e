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
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentCategoryInvalid = errors.New("tournament category invalid")
	ErrTournamentNameConflict    = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	ListActive(ctx context.Context, exec SQLExecutor) ([]models.Tournament, error)
	UpdatePhase(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase) error
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, category_id, phase, group_count, qualifiers_per_group,
	best_loser_slots, start_date, end_date, active, created_at
`

func (r *postgresTournamentRepository) handleError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return ErrTournamentCategoryInvalid
		case "23505":
			return ErrTournamentNameConflict
		}
	}
	return err
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments
			(name, category_id, phase, group_count, qualifiers_per_group,
			 best_loser_slots, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.CategoryID,
		tournament.Phase,
		tournament.GroupCount,
		tournament.QualifiersPerGroup,
		tournament.BestLoserSlots,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Active,
	).Scan(&tournament.ID, &tournament.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", r.handleError(err))
	}
	return nil
}

func (r *postgresTournamentRepository) scanTournament(scanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := scanner.Scan(
		&t.ID, &t.Name, &t.CategoryID, &t.Phase, &t.GroupCount, &t.QualifiersPerGroup,
		&t.BestLoserSlots, &t.StartDate, &t.EndDate, &t.Active, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + `FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) ListActive(ctx context.Context, exec SQLExecutor) ([]models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + `FROM tournaments WHERE active = TRUE ORDER BY start_date DESC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []models.Tournament
	for rows.Next() {
		t, err := r.scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdatePhase(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET phase = $1 WHERE id = $2`, phase, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d phase: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET
			name = $1, category_id = $2, phase = $3, group_count = $4,
			qualifiers_per_group = $5, best_loser_slots = $6, start_date = $7,
			end_date = $8, active = $9
		WHERE id = $10`

	result, err := executor.ExecContext(ctx, query,
		tournament.Name,
		tournament.CategoryID,
		tournament.Phase,
		tournament.GroupCount,
		tournament.QualifiersPerGroup,
		tournament.BestLoserSlots,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Active,
		tournament.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", tournament.ID, r.handleError(err))
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
