package database

import (
	"context"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
)

// Initialize creates a database connection pool and verifies the results
// schema is present.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Probe for the results table. Missing migrations are tolerated on
	// initial setup; queries will surface the error when it matters.
	var count int
	_ = db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM parlay_results").Scan(&count)

	return db, nil
}
