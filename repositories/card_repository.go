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
	ErrCardNotFound       = errors.New("card not found")
	ErrCardPlayerInvalid  = errors.New("card player or match invalid")
	ErrCardAlreadySettled = errors.New("card fine already settled")
)

// CardTally is a per-player card count used by the most-carded leaderboard.
type CardTally struct {
	PlayerID int `json:"player_id"`
	TeamID   int `json:"team_id"`
	Yellow   int `json:"yellow"`
	Red      int `json:"red"`
}

type CardRepository interface {
	Create(ctx context.Context, exec SQLExecutor, card *models.Card) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Card, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Card, error)
	// ListUncountedYellow returns the player's yellow cards in the
	// tournament that have not yet contributed to a suspension, oldest
	// first.
	ListUncountedYellow(ctx context.Context, exec SQLExecutor, playerID, tournamentID int) ([]models.Card, error)
	MarkCounted(ctx context.Context, exec SQLExecutor, cardIDs []int) error
	MarkFinePaid(ctx context.Context, exec SQLExecutor, id int) error
	CountByTeam(ctx context.Context, exec SQLExecutor, teamID, tournamentID int) (yellow, red int, err error)
	ListUnpaidByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Card, error)
	MostCarded(ctx context.Context, exec SQLExecutor, tournamentID, limit int) ([]CardTally, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) CardRepository {
	return &postgresCardRepository{db: db}
}

func (r *postgresCardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const cardColumns = `
	id, player_id, match_id, type, minute, counted, fine_paid, created_at
`

func (r *postgresCardRepository) Create(ctx context.Context, exec SQLExecutor, card *models.Card) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO cards (player_id, match_id, type, minute)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		card.PlayerID,
		card.MatchID,
		card.Type,
		card.Minute,
	).Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrCardPlayerInvalid
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *postgresCardRepository) scanCard(scanner interface{ Scan(...interface{}) error }) (*models.Card, error) {
	var c models.Card
	err := scanner.Scan(
		&c.ID, &c.PlayerID, &c.MatchID, &c.Type, &c.Minute,
		&c.Counted, &c.FinePaid, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	return &c, nil
}

func (r *postgresCardRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Card, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + cardColumns + `FROM cards WHERE id = $1`
	return r.scanCard(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresCardRepository) listCards(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Card, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := r.scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func (r *postgresCardRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Card, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + cardColumns + `FROM cards WHERE match_id = $1 ORDER BY minute NULLS LAST, id`
	return r.listCards(ctx, executor, query, matchID)
}

func (r *postgresCardRepository) ListUncountedYellow(ctx context.Context, exec SQLExecutor, playerID, tournamentID int) ([]models.Card, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT c.id, c.player_id, c.match_id, c.type, c.minute, c.counted, c.fine_paid, c.created_at
		FROM cards c
		JOIN matches m ON m.id = c.match_id
		WHERE c.player_id = $1 AND m.tournament_id = $2
		  AND c.type = $3 AND c.counted = FALSE
		ORDER BY c.id`
	return r.listCards(ctx, executor, query, playerID, tournamentID, models.CardYellow)
}

func (r *postgresCardRepository) MarkCounted(ctx context.Context, exec SQLExecutor, cardIDs []int) error {
	if len(cardIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE cards SET counted = TRUE WHERE id = ANY($1)`, pq.Array(cardIDs))
	if err != nil {
		return fmt.Errorf("failed to mark cards counted: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if int(rowsAffected) != len(cardIDs) {
		return fmt.Errorf("%w: marked %d of %d cards counted", ErrCardNotFound, rowsAffected, len(cardIDs))
	}
	return nil
}

func (r *postgresCardRepository) MarkFinePaid(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE cards SET fine_paid = TRUE WHERE id = $1 AND fine_paid = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to mark card %d fine paid: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing card from one already settled.
		if _, getErr := r.GetByID(ctx, exec, id); getErr != nil {
			return getErr
		}
		return ErrCardAlreadySettled
	}
	return nil
}

func (r *postgresCardRepository) CountByTeam(ctx context.Context, exec SQLExecutor, teamID, tournamentID int) (int, int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
			COUNT(*) FILTER (WHERE c.type = $3),
			COUNT(*) FILTER (WHERE c.type = $4)
		FROM cards c
		JOIN players p ON p.id = c.player_id
		JOIN matches m ON m.id = c.match_id
		WHERE p.team_id = $1 AND m.tournament_id = $2`

	var yellow, red int
	err := executor.QueryRowContext(ctx, query, teamID, tournamentID, models.CardYellow, models.CardRed).Scan(&yellow, &red)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count cards for team %d: %w", teamID, err)
	}
	return yellow, red, nil
}

func (r *postgresCardRepository) ListUnpaidByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Card, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT c.id, c.player_id, c.match_id, c.type, c.minute, c.counted, c.fine_paid, c.created_at
		FROM cards c
		JOIN players p ON p.id = c.player_id
		WHERE p.team_id = $1 AND c.fine_paid = FALSE
		ORDER BY c.id`
	return r.listCards(ctx, executor, query, teamID)
}

func (r *postgresCardRepository) MostCarded(ctx context.Context, exec SQLExecutor, tournamentID, limit int) ([]CardTally, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT c.player_id, p.team_id,
			COUNT(*) FILTER (WHERE c.type = $2) AS yellow,
			COUNT(*) FILTER (WHERE c.type = $3) AS red
		FROM cards c
		JOIN players p ON p.id = c.player_id
		JOIN matches m ON m.id = c.match_id
		WHERE m.tournament_id = $1
		GROUP BY c.player_id, p.team_id
		ORDER BY red DESC, yellow DESC, c.player_id
		LIMIT $4`

	rows, err := executor.QueryContext(ctx, query, tournamentID, models.CardYellow, models.CardRed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list most carded players: %w", err)
	}
	defer rows.Close()

	var tallies []CardTally
	for rows.Next() {
		var t CardTally
		if err := rows.Scan(&t.PlayerID, &t.TeamID, &t.Yellow, &t.Red); err != nil {
			return nil, fmt.Errorf("failed to scan card tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

func (r *postgresCardRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM cards WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete cards of match %d: %w", matchID, err)
	}
	return nil
}
