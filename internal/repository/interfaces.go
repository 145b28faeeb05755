package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// ResultRepository defines the interface for parlay result data access
type ResultRepository interface {
	Create(ctx context.Context, result *models.ParlayResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ParlayResult, error)
	Settle(ctx context.Context, id uuid.UUID, result string, payout float64) error
	GetPending(ctx context.Context) ([]*models.ParlayResult, error)
	GetRecent(ctx context.Context, limit int) ([]*models.ParlayResult, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.ParlayResult, error)
}
