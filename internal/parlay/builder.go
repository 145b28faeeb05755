package parlay

import (
	"sort"

	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// BuildOptions are the per-request knobs for one build pass.
type BuildOptions struct {
	// MaxLegs enables size-4 combinations when >= 4. Sizes 2 and 3 are
	// always enumerated.
	MaxLegs int

	// MinEV is the minimum expected value per unit stake a candidate must
	// clear to be kept.
	MinEV float64

	// SameGameOnly restricts candidates to legs sharing one event.
	SameGameOnly bool

	// Diversify applies the event-coverage diversification pass to the
	// ranked list (ignored when SameGameOnly is set).
	Diversify bool
}

// BuildParlays deduplicates the leg pool, enumerates valid combinations,
// values each candidate, filters by minimum EV, ranks, and applies the
// diversification pass. The full ranked list is returned; top-N truncation
// belongs to the caller.
func BuildParlays(pool []models.Leg, opts BuildOptions, cfg Config) []models.Parlay {
	legs := capPool(DedupePool(pool), cfg.MaxPoolSize)
	if len(legs) < MinLegs {
		return nil
	}

	sizes := []int{2, 3}
	if opts.MaxLegs >= 4 {
		sizes = append(sizes, 4)
	}

	b := &builder{legs: legs, opts: opts, cfg: cfg}
	var kept []models.Parlay
	for _, size := range sizes {
		if size > len(legs) {
			break
		}
		b.enumerate(size, &kept)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		vi, vj := kept[i].Valuation, kept[j].Valuation
		if vi.ExpectedValue != vj.ExpectedValue {
			return vi.ExpectedValue > vj.ExpectedValue
		}
		return vi.WinProbability > vj.WinProbability
	})

	if opts.Diversify && !opts.SameGameOnly {
		if diversified := diversify(kept); len(diversified) >= 3 {
			return diversified
		}
		// Thin markets: fall back to the plain ranking rather than
		// returning a near-empty diversified list.
	}
	return kept
}

// builder enumerates combinations recursively, pruning structurally invalid
// prefixes instead of materializing and then filtering.
type builder struct {
	legs []models.Leg
	opts BuildOptions
	cfg  Config

	current   []models.Leg
	selection map[models.SelectionKey]bool
	markets   map[eventMarket]bool
}

type eventMarket struct {
	EventID string
	Market  string
}

func (b *builder) enumerate(size int, kept *[]models.Parlay) {
	b.current = b.current[:0]
	b.selection = make(map[models.SelectionKey]bool)
	b.markets = make(map[eventMarket]bool)
	b.extend(0, size, kept)
}

func (b *builder) extend(start, size int, kept *[]models.Parlay) {
	if len(b.current) == size {
		b.emit(kept)
		return
	}
	for i := start; i <= len(b.legs)-(size-len(b.current)); i++ {
		leg := b.legs[i]
		if !b.admissible(leg) {
			continue
		}
		b.push(leg)
		b.extend(i+1, size, kept)
		b.pop(leg)
	}
}

// admissible applies the structural invariants to a candidate extension:
// no repeated logical bet, optional hedge rejection, and the same-game
// constraint.
func (b *builder) admissible(leg models.Leg) bool {
	if b.selection[leg.SelectionKey()] {
		return false
	}
	if !b.cfg.AllowHedgedLegs && b.markets[eventMarket{leg.EventID, leg.Market}] {
		return false
	}
	if b.opts.SameGameOnly && len(b.current) > 0 && leg.EventID != b.current[0].EventID {
		return false
	}
	return true
}

func (b *builder) push(leg models.Leg) {
	b.current = append(b.current, leg)
	b.selection[leg.SelectionKey()] = true
	b.markets[eventMarket{leg.EventID, leg.Market}] = true
}

func (b *builder) pop(leg models.Leg) {
	b.current = b.current[:len(b.current)-1]
	delete(b.selection, leg.SelectionKey())
	delete(b.markets, eventMarket{leg.EventID, leg.Market})
}

func (b *builder) emit(kept *[]models.Parlay) {
	valuation, err := Value(b.current, b.cfg)
	if err != nil {
		return
	}
	if valuation.ExpectedValue < b.opts.MinEV {
		return
	}
	legs := make([]models.Leg, len(b.current))
	copy(legs, b.current)
	*kept = append(*kept, models.Parlay{Legs: legs, Valuation: valuation})
}

// diversify walks the ranked list and skips any candidate whose event ids are
// all already covered by previously accepted candidates. A candidate with at
// least one unseen event is accepted.
func diversify(ranked []models.Parlay) []models.Parlay {
	seen := make(map[string]bool)
	var out []models.Parlay
	for _, p := range ranked {
		ids := p.EventIDs()
		novel := false
		for _, id := range ids {
			if !seen[id] {
				novel = true
				break
			}
		}
		if !novel {
			continue
		}
		for _, id := range ids {
			seen[id] = true
		}
		out = append(out, p)
	}
	return out
}
