package parlay

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Randysweatpants/GambleBotAPI/internal/models"
	"github.com/Randysweatpants/GambleBotAPI/internal/odds"
)

// ExtractLegs walks raw market records for every event and bookmaker, de-vigs
// each two-way market of interest, and returns the flat pool of priced legs
// (one leg per outcome per book). Markets that fail the overround gate or
// carry unusable prices are skipped; a bad record never aborts the pool.
func ExtractLegs(events []models.Event, cfg Config, log *logrus.Logger) []models.Leg {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	var pool []models.Leg
	for _, event := range events {
		for _, book := range event.Bookmakers {
			for _, market := range book.Markets {
				legs, ok := extractMarket(event, book, market, cfg, log)
				if ok {
					pool = append(pool, legs...)
				}
			}
		}
	}
	return pool
}

// extractMarket de-vigs one two-way market and returns its two legs.
func extractMarket(event models.Event, book models.Bookmaker, market models.Market, cfg Config, log *logrus.Logger) ([]models.Leg, bool) {
	switch market.Key {
	case models.MarketMoneyline, models.MarketSpreads, models.MarketTotals:
	default:
		return nil, false
	}
	if len(market.Outcomes) < 2 {
		return nil, false
	}

	first, second := market.Outcomes[0], market.Outcomes[1]
	if market.Key == models.MarketTotals && second.Name < first.Name {
		// Over/Under pairing must not depend on source ordering.
		first, second = second, first
	}

	dec1, err := odds.AmericanToDecimal(first.Price)
	if err != nil {
		log.WithFields(logrus.Fields{
			"event":  event.ID,
			"book":   book.Key,
			"market": market.Key,
		}).WithError(err).Warn("Dropping market with invalid price")
		return nil, false
	}
	dec2, err := odds.AmericanToDecimal(second.Price)
	if err != nil {
		log.WithFields(logrus.Fields{
			"event":  event.ID,
			"book":   book.Key,
			"market": market.Key,
		}).WithError(err).Warn("Dropping market with invalid price")
		return nil, false
	}

	imp1, err := odds.ImpliedFromDecimal(dec1)
	if err != nil {
		return nil, false
	}
	imp2, err := odds.ImpliedFromDecimal(dec2)
	if err != nil {
		return nil, false
	}

	fair1, fair2, overround := odds.DevigTwoWay(imp1, imp2)
	if !cfg.Overround.Accepts(overround) {
		// Data-quality gate, not an error: stale or non-standard market.
		log.WithFields(logrus.Fields{
			"event":     event.ID,
			"book":      book.Key,
			"market":    market.Key,
			"overround": overround,
		}).Debug("Skipping market outside overround band")
		return nil, false
	}

	label := marketLabel(market.Key, first.Point)
	note := fmt.Sprintf("overround %.3f", overround)

	return []models.Leg{
		{
			EventID:       event.ID,
			CommenceTime:  event.CommenceTime,
			Market:        label,
			Selection:     first.Name,
			DecimalPrice:  dec1,
			AmericanPrice: first.Price,
			FairProb:      fair1,
			Book:          book.Key,
			Note:          note,
		},
		{
			EventID:       event.ID,
			CommenceTime:  event.CommenceTime,
			Market:        label,
			Selection:     second.Name,
			DecimalPrice:  dec2,
			AmericanPrice: second.Price,
			FairProb:      fair2,
			Book:          book.Key,
			Note:          note,
		},
	}, true
}

// marketLabel builds the human market string that doubles as part of the leg
// identity. Both sides of one market share the same label.
func marketLabel(key string, point *float64) string {
	switch key {
	case models.MarketTotals:
		if point != nil {
			return fmt.Sprintf("Total %g", *point)
		}
		return "Total"
	case models.MarketSpreads:
		if point != nil {
			return fmt.Sprintf("Spread %g", *point)
		}
		return "Spread"
	default:
		return "ML"
	}
}

// DedupePool collapses a leg pool to the best price per (event, market,
// selection, book) identity, preserving first-seen ordering.
func DedupePool(pool []models.Leg) []models.Leg {
	index := make(map[models.LegKey]int, len(pool))
	out := make([]models.Leg, 0, len(pool))
	for _, leg := range pool {
		key := leg.Key()
		if at, ok := index[key]; ok {
			if leg.DecimalPrice > out[at].DecimalPrice {
				out[at] = leg
			}
			continue
		}
		index[key] = len(out)
		out = append(out, leg)
	}
	return out
}

// capPool bounds an oversized pool, keeping the legs with the highest
// single-leg fair edge so enumeration cost stays under control.
func capPool(pool []models.Leg, max int) []models.Leg {
	if max <= 0 || len(pool) <= max {
		return pool
	}
	capped := make([]models.Leg, len(pool))
	copy(capped, pool)
	sort.SliceStable(capped, func(i, j int) bool {
		return capped[i].FairEdge() > capped[j].FairEdge()
	})
	return capped[:max]
}
