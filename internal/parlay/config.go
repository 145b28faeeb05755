// Package parlay implements the EV parlay engine: leg extraction from raw
// market records, correlation-adjusted parlay valuation, Kelly staking, and
// the combinatorial build/rank/diversify pass.
package parlay

import "github.com/Randysweatpants/GambleBotAPI/internal/odds"

// Leg count bounds for a parlay candidate.
const (
	MinLegs = 2
	MaxLegs = 4
)

// Risk policy defaults. The stake suggestion is half of a Kelly fraction
// clipped at 15% of bankroll.
const (
	DefaultKellyCap         = 0.15
	DefaultKellyFraction    = 0.5
	DefaultCorrelationDecay = 0.90
	DefaultBankroll         = 1000.0
	DefaultMaxPoolSize      = 150
)

// Config holds the read-only pricing constants for one engine instance.
// It is injected into every entry point rather than read from ambient state,
// so tests can vary bankroll and thresholds freely.
type Config struct {
	Bankroll         float64
	CorrelationDecay float64
	KellyCap         float64
	KellyFraction    float64
	Overround        odds.Band

	// MaxPoolSize bounds the deduplicated leg pool before enumeration.
	// Oversized pools keep the legs with the highest single-leg fair edge.
	MaxPoolSize int

	// AllowHedgedLegs permits two opposing selections from the same market
	// of the same event in one parlay. Off by default: such a combination
	// is a hedge, not a parlay.
	AllowHedgedLegs bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Bankroll:         DefaultBankroll,
		CorrelationDecay: DefaultCorrelationDecay,
		KellyCap:         DefaultKellyCap,
		KellyFraction:    DefaultKellyFraction,
		Overround:        odds.DefaultBand(),
		MaxPoolSize:      DefaultMaxPoolSize,
	}
}
