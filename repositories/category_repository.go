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
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameConflict = errors.New("category name already exists")
)

type CategoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, category *models.Category) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error)
	GetByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Category, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Category, error)
	Update(ctx context.Context, exec SQLExecutor, category *models.Category) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const categoryColumns = `
	id, name, description, yellow_card_limit, yellow_suspension_matches,
	red_suspension_matches, absence_limit, yellow_card_fine, red_card_fine,
	inscription_cost, created_at
`

func (r *postgresCategoryRepository) Create(ctx context.Context, exec SQLExecutor, category *models.Category) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO categories
			(name, description, yellow_card_limit, yellow_suspension_matches,
			 red_suspension_matches, absence_limit, yellow_card_fine, red_card_fine, inscription_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		category.Name,
		category.Description,
		category.YellowCardLimit,
		category.YellowSuspensionMatches,
		category.RedSuspensionMatches,
		category.AbsenceLimit,
		category.YellowCardFine,
		category.RedCardFine,
		category.InscriptionCost,
	).Scan(&category.ID, &category.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCategoryNameConflict
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *postgresCategoryRepository) scanCategory(scanner interface{ Scan(...interface{}) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.YellowCardLimit, &c.YellowSuspensionMatches,
		&c.RedSuspensionMatches, &c.AbsenceLimit, &c.YellowCardFine, &c.RedCardFine,
		&c.InscriptionCost, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return &c, nil
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + categoryColumns + `FROM categories WHERE id = $1`
	return r.scanCategory(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresCategoryRepository) GetByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Category, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT c.id, c.name, c.description, c.yellow_card_limit, c.yellow_suspension_matches,
		       c.red_suspension_matches, c.absence_limit, c.yellow_card_fine, c.red_card_fine,
		       c.inscription_cost, c.created_at
		FROM categories c
		JOIN tournaments t ON t.category_id = c.id
		WHERE t.id = $1`
	return r.scanCategory(executor.QueryRowContext(ctx, query, tournamentID))
}

func (r *postgresCategoryRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Category, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + categoryColumns + `FROM categories ORDER BY name`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := r.scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *postgresCategoryRepository) Update(ctx context.Context, exec SQLExecutor, category *models.Category) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE categories SET
			name = $1, description = $2, yellow_card_limit = $3, yellow_suspension_matches = $4,
			red_suspension_matches = $5, absence_limit = $6, yellow_card_fine = $7,
			red_card_fine = $8, inscription_cost = $9
		WHERE id = $10`

	result, err := executor.ExecContext(ctx, query,
		category.Name,
		category.Description,
		category.YellowCardLimit,
		category.YellowSuspensionMatches,
		category.RedSuspensionMatches,
		category.AbsenceLimit,
		category.YellowCardFine,
		category.RedCardFine,
		category.InscriptionCost,
		category.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCategoryNameConflict
		}
		return fmt.Errorf("failed to update category %d: %w", category.ID, err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}
