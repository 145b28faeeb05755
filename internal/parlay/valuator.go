package parlay

import (
	"math"

	"github.com/Randysweatpants/GambleBotAPI/internal/models"
	"github.com/Randysweatpants/GambleBotAPI/internal/odds"
)

// Value prices an ordered set of legs as a single parlay: combined decimal
// price, fair win probability with a same-event correlation penalty, EV per
// unit stake, and a risk-clipped Kelly stake suggestion. Pure function of its
// inputs and the engine configuration.
func Value(legs []models.Leg, cfg Config) (models.Valuation, error) {
	if len(legs) < MinLegs || len(legs) > MaxLegs {
		return models.Valuation{}, models.ErrInvalidLegCount
	}

	price := 1.0
	fair := 1.0
	perEvent := make(map[string]int, len(legs))
	for _, leg := range legs {
		price *= leg.DecimalPrice
		fair *= leg.FairProb
		perEvent[leg.EventID]++
	}

	// Every event contributing k > 1 legs decays the combined probability
	// by decay^(k-1); single-leg events leave the multiplier untouched.
	correlation := 1.0
	for _, count := range perEvent {
		if count > 1 {
			correlation *= math.Pow(cfg.CorrelationDecay, float64(count-1))
		}
	}

	winProb := clamp01(fair * correlation)
	ev := winProb*price - 1

	kelly := kellyFraction(winProb, price)
	clipped := math.Min(kelly, cfg.KellyCap)
	stakeFraction := clipped * cfg.KellyFraction

	return models.Valuation{
		DecimalPrice:   price,
		AmericanPrice:  odds.DecimalToAmerican(price),
		WinProbability: winProb,
		ExpectedValue:  ev,
		KellyRaw:       kelly,
		KellyClipped:   clipped,
		StakeFraction:  stakeFraction,
		SuggestedStake: stakeFraction * cfg.Bankroll,
		Correlation:    correlation,
	}, nil
}

// kellyFraction returns the full Kelly stake as a fraction of bankroll,
// floored at zero. With b = price-1 and q = 1-p, f = (b*p - q) / b.
func kellyFraction(p, price float64) float64 {
	b := price - 1
	if b <= 0 {
		return 0
	}
	q := 1 - p
	f := (b*p - q) / b
	if f < 0 {
		return 0
	}
	return f
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
