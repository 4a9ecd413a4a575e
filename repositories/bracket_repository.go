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
	ErrPhaseNotFound     = errors.New("elimination phase not found")
	ErrSlotNotFound      = errors.New("bracket slot not found")
	ErrSlotTeamInvalid   = errors.New("bracket slot team or match invalid")
	ErrPhaseConflict     = errors.New("elimination phase already exists for tournament")
	ErrSlotPositionTaken = errors.New("bracket slot position already taken in phase")
)

type BracketRepository interface {
	CreatePhase(ctx context.Context, exec SQLExecutor, phase *models.EliminationPhase) error
	GetPhaseByID(ctx context.Context, exec SQLExecutor, id int) (*models.EliminationPhase, error)
	GetPhaseByName(ctx context.Context, exec SQLExecutor, tournamentID int, name models.TournamentPhase) (*models.EliminationPhase, error)
	ListPhases(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.EliminationPhase, error)
	MarkPhaseCompleted(ctx context.Context, exec SQLExecutor, id int) error

	CreateSlot(ctx context.Context, exec SQLExecutor, slot *models.BracketSlot) error
	GetSlotByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketSlot, error)
	// GetSlotByIDForUpdate locks the slot row so concurrent advancement of
	// the same slot serializes.
	GetSlotByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.BracketSlot, error)
	GetSlotByPosition(ctx context.Context, exec SQLExecutor, phaseID, position int) (*models.BracketSlot, error)
	ListSlotsByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]models.BracketSlot, error)
	UpdateSlot(ctx context.Context, exec SQLExecutor, slot *models.BracketSlot) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) CreatePhase(ctx context.Context, exec SQLExecutor, phase *models.EliminationPhase) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO elimination_phases (tournament_id, name, phase_order)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, phase.TournamentID, phase.Name, phase.Order).
		Scan(&phase.ID, &phase.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPhaseConflict
		}
		return fmt.Errorf("failed to create elimination phase: %w", err)
	}
	return nil
}

func (r *postgresBracketRepository) scanPhase(scanner interface{ Scan(...interface{}) error }) (*models.EliminationPhase, error) {
	var p models.EliminationPhase
	err := scanner.Scan(&p.ID, &p.TournamentID, &p.Name, &p.Order, &p.Completed, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to scan elimination phase: %w", err)
	}
	return &p, nil
}

const phaseColumns = ` id, tournament_id, name, phase_order, completed, created_at `

func (r *postgresBracketRepository) GetPhaseByID(ctx context.Context, exec SQLExecutor, id int) (*models.EliminationPhase, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + phaseColumns + `FROM elimination_phases WHERE id = $1`
	return r.scanPhase(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresBracketRepository) GetPhaseByName(ctx context.Context, exec SQLExecutor, tournamentID int, name models.TournamentPhase) (*models.EliminationPhase, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + phaseColumns + `FROM elimination_phases WHERE tournament_id = $1 AND name = $2`
	return r.scanPhase(executor.QueryRowContext(ctx, query, tournamentID, name))
}

func (r *postgresBracketRepository) ListPhases(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.EliminationPhase, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + phaseColumns + `FROM elimination_phases WHERE tournament_id = $1 ORDER BY phase_order`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list elimination phases: %w", err)
	}
	defer rows.Close()

	var phases []models.EliminationPhase
	for rows.Next() {
		p, err := r.scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, *p)
	}
	return phases, rows.Err()
}

func (r *postgresBracketRepository) MarkPhaseCompleted(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE elimination_phases SET completed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark phase %d completed: %w", id, err)
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}

func (r *postgresBracketRepository) CreateSlot(ctx context.Context, exec SQLExecutor, slot *models.BracketSlot) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_slots (phase_id, position, home_team_id, away_team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, slot.PhaseID, slot.Position, slot.HomeTeamID, slot.AwayTeamID).
		Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23503":
				return ErrSlotTeamInvalid
			case "23505":
				return ErrSlotPositionTaken
			}
		}
		return fmt.Errorf("failed to create bracket slot: %w", err)
	}
	return nil
}

const slotColumns = ` id, phase_id, position, home_team_id, away_team_id, match_id, completed, created_at `

func (r *postgresBracketRepository) scanSlot(scanner interface{ Scan(...interface{}) error }) (*models.BracketSlot, error) {
	var s models.BracketSlot
	err := scanner.Scan(&s.ID, &s.PhaseID, &s.Position, &s.HomeTeamID, &s.AwayTeamID, &s.MatchID, &s.Completed, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket slot: %w", err)
	}
	return &s, nil
}

func (r *postgresBracketRepository) GetSlotByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketSlot, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + slotColumns + `FROM bracket_slots WHERE id = $1`
	return r.scanSlot(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresBracketRepository) GetSlotByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.BracketSlot, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + slotColumns + `FROM bracket_slots WHERE id = $1 FOR UPDATE`
	return r.scanSlot(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresBracketRepository) GetSlotByPosition(ctx context.Context, exec SQLExecutor, phaseID, position int) (*models.BracketSlot, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + slotColumns + `FROM bracket_slots WHERE phase_id = $1 AND position = $2`
	return r.scanSlot(executor.QueryRowContext(ctx, query, phaseID, position))
}

func (r *postgresBracketRepository) ListSlotsByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]models.BracketSlot, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + slotColumns + `FROM bracket_slots WHERE phase_id = $1 ORDER BY position`

	rows, err := executor.QueryContext(ctx, query, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket slots: %w", err)
	}
	defer rows.Close()

	var slots []models.BracketSlot
	for rows.Next() {
		s, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

func (r *postgresBracketRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, slot *models.BracketSlot) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE bracket_slots SET
			home_team_id = $1, away_team_id = $2, match_id = $3, completed = $4
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query,
		slot.HomeTeamID, slot.AwayTeamID, slot.MatchID, slot.Completed, slot.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrSlotTeamInvalid
		}
		return fmt.Errorf("failed to update bracket slot %d: %w", slot.ID, err)
	}
	return checkAffectedRows(result, ErrSlotNotFound)
}
