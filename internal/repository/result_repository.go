package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Randysweatpants/GambleBotAPI/internal/database"
	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

// Create inserts a new parlay result. Legs are stored as JSONB so the full
// recommendation snapshot survives grading.
func (r *PostgresResultRepository) Create(ctx context.Context, result *models.ParlayResult) error {
	if !models.ValidResult(result.Result) {
		return models.ErrInvalidResult
	}

	legsJSON, err := json.Marshal(result.Legs)
	if err != nil {
		return fmt.Errorf("failed to marshal legs: %w", err)
	}

	query := `
		INSERT INTO parlay_results (id, sport, legs, decimal_price, win_probability,
		                            expected_value, stake, payout, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		result.ID, result.Sport, legsJSON, result.DecimalPrice, result.WinProbability,
		result.ExpectedValue, result.Stake, result.Payout, result.Result, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create parlay result: %w", err)
	}

	return nil
}

// GetByID retrieves a parlay result by ID
func (r *PostgresResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ParlayResult, error) {
	query := `
		SELECT id, sport, legs, decimal_price, win_probability, expected_value,
		       stake, payout, result, created_at, settled_at
		FROM parlay_results WHERE id = $1
	`

	result, err := scanResult(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parlay result: %w", err)
	}

	return result, nil
}

// Settle updates the outcome of a logged parlay
func (r *PostgresResultRepository) Settle(ctx context.Context, id uuid.UUID, result string, payout float64) error {
	if !models.ValidResult(result) || result == models.ResultPending {
		return models.ErrInvalidResult
	}

	query := `
		UPDATE parlay_results SET result = $2, payout = $3, settled_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, result, decimal.NewFromFloat(payout))
	if err != nil {
		return fmt.Errorf("failed to settle parlay result: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetPending retrieves all ungraded parlay results
func (r *PostgresResultRepository) GetPending(ctx context.Context) ([]*models.ParlayResult, error) {
	query := `
		SELECT id, sport, legs, decimal_price, win_probability, expected_value,
		       stake, payout, result, created_at, settled_at
		FROM parlay_results
		WHERE result = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending results: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

// GetRecent retrieves the most recently logged parlay results
func (r *PostgresResultRepository) GetRecent(ctx context.Context, limit int) ([]*models.ParlayResult, error) {
	query := `
		SELECT id, sport, legs, decimal_price, win_probability, expected_value,
		       stake, payout, result, created_at, settled_at
		FROM parlay_results
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent results: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

// GetByDateRange retrieves parlay results logged within a date range
func (r *PostgresResultRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.ParlayResult, error) {
	query := `
		SELECT id, sport, legs, decimal_price, win_probability, expected_value,
		       stake, payout, result, created_at, settled_at
		FROM parlay_results
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query results by date range: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

func scanResult(row pgx.Row) (*models.ParlayResult, error) {
	result := &models.ParlayResult{}
	var legsJSON []byte

	err := row.Scan(
		&result.ID, &result.Sport, &legsJSON, &result.DecimalPrice, &result.WinProbability,
		&result.ExpectedValue, &result.Stake, &result.Payout, &result.Result,
		&result.CreatedAt, &result.SettledAt,
	)
	if err != nil {
		return nil, err
	}

	if len(legsJSON) > 0 {
		if err := json.Unmarshal(legsJSON, &result.Legs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal legs: %w", err)
		}
	}

	return result, nil
}

func collectResults(rows pgx.Rows) ([]*models.ParlayResult, error) {
	var results []*models.ParlayResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parlay result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
