package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
)

// SetupTestDB creates a test database connection and verifies it. Connection
// parameters come from TEST_DATABASE_* environment variables with local
// defaults; the parlay_results schema must already be migrated.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Enabled:        true,
		Host:           envOr("TEST_DATABASE_HOST", "localhost"),
		Port:           5432,
		Name:           envOr("TEST_DATABASE_NAME", "gamblebot_test"),
		User:           envOr("TEST_DATABASE_USER", "test"),
		Password:       envOr("TEST_DATABASE_PASSWORD", "test"),
		SSLMode:        "disable",
		MaxConnections: 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer verifyCancel()

	if err := db.Ping(verifyCtx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
