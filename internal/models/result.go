package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Result statuses for a logged parlay.
const (
	ResultPending = "pending"
	ResultWon     = "won"
	ResultLost    = "lost"
	ResultVoid    = "void"
)

// ParlayResult is a persisted record of a parlay the user actually played,
// kept for future learning. It snapshots the valuation at recommendation time
// so later grading is independent of price movement.
type ParlayResult struct {
	ID             uuid.UUID       `json:"id"`
	Sport          string          `json:"sport"`
	Legs           []Leg           `json:"legs"`
	DecimalPrice   float64         `json:"decimal_price"`
	WinProbability float64         `json:"win_probability"`
	ExpectedValue  float64         `json:"expected_value"`
	Stake          decimal.Decimal `json:"stake"`
	Payout         decimal.Decimal `json:"payout"`
	Result         string          `json:"result"`
	CreatedAt      time.Time       `json:"created_at"`
	SettledAt      *time.Time      `json:"settled_at,omitempty"`
}

// ValidResult reports whether s is a recognized result status.
func ValidResult(s string) bool {
	switch s {
	case ResultPending, ResultWon, ResultLost, ResultVoid:
		return true
	}
	return false
}
