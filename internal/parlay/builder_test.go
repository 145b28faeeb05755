package parlay

import (
	"math"
	"testing"

	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// edgeLeg returns a leg with a positive fair edge so builder tests have
// qualifying material to work with.
func edgeLeg(event, market, selection string, price, fair float64) models.Leg {
	l := leg(event, market, selection, price, fair)
	return l
}

func TestBuildParlaysExcludesNegativeEV(t *testing.T) {
	// Two -110 coinflips across different events price at
	// 3.648 with p 0.25, EV -0.088, below a 0.02 floor.
	price := 1.0 + 100.0/110.0
	pool := []models.Leg{
		edgeLeg("e1", "ML", "Home", price, 0.5),
		edgeLeg("e2", "ML", "Away", price, 0.5),
	}
	out := BuildParlays(pool, BuildOptions{MaxLegs: 3, MinEV: 0.02}, DefaultConfig())
	if len(out) != 0 {
		t.Fatalf("negative-EV candidate must be excluded, got %d parlays", len(out))
	}
}

func TestBuildParlaysSameEventEdgeCase(t *testing.T) {
	// Same-event pair with fair product 0.30 and combined
	// price 4.0 values at EV 0.08 after the 0.90 correlation penalty.
	pool := []models.Leg{
		edgeLeg("e1", "ML", "Home", 2.0, 0.6),
		edgeLeg("e1", "Total 44.5", "Over", 2.0, 0.5),
	}
	cfg := DefaultConfig()

	out := BuildParlays(pool, BuildOptions{MaxLegs: 2, MinEV: 0.08}, cfg)
	if len(out) != 1 {
		t.Fatalf("expected candidate kept at min EV 0.08, got %d", len(out))
	}
	if math.Abs(out[0].Valuation.ExpectedValue-0.08) > 1e-9 {
		t.Errorf("EV = %v, want 0.08", out[0].Valuation.ExpectedValue)
	}

	out = BuildParlays(pool, BuildOptions{MaxLegs: 2, MinEV: 0.081}, cfg)
	if len(out) != 0 {
		t.Fatalf("candidate must be excluded above its EV, got %d", len(out))
	}
}

func TestBuildParlaysMinEVProperty(t *testing.T) {
	pool := []models.Leg{
		edgeLeg("e1", "ML", "A", 2.2, 0.52),
		edgeLeg("e2", "ML", "B", 2.1, 0.55),
		edgeLeg("e3", "ML", "C", 2.0, 0.56),
		edgeLeg("e4", "ML", "D", 1.9, 0.50),
	}
	minEV := 0.01
	out := BuildParlays(pool, BuildOptions{MaxLegs: 4, MinEV: minEV}, DefaultConfig())
	if len(out) == 0 {
		t.Fatal("expected qualifying parlays")
	}
	for _, p := range out {
		if p.Valuation.ExpectedValue < minEV {
			t.Errorf("returned parlay below min EV: %v", p.Valuation.ExpectedValue)
		}
	}
}

func TestBuildParlaysNeverRepeatsSelection(t *testing.T) {
	// Same logical bet quoted by two books survives dedupe but must never
	// appear twice in one candidate.
	a := edgeLeg("e1", "ML", "Home", 2.2, 0.55)
	b := edgeLeg("e1", "ML", "Home", 2.25, 0.55)
	b.Book = "fanduel"
	c := edgeLeg("e2", "ML", "Away", 2.2, 0.55)

	out := BuildParlays([]models.Leg{a, b, c}, BuildOptions{MaxLegs: 3, MinEV: -1}, DefaultConfig())
	for _, p := range out {
		seen := make(map[models.SelectionKey]bool)
		for _, l := range p.Legs {
			if seen[l.SelectionKey()] {
				t.Fatalf("parlay repeats selection %+v", l.SelectionKey())
			}
			seen[l.SelectionKey()] = true
		}
	}
}

func TestBuildParlaysHedgePolicy(t *testing.T) {
	home := edgeLeg("e1", "ML", "Home", 2.1, 0.55)
	away := edgeLeg("e1", "ML", "Away", 2.1, 0.55)
	filler := edgeLeg("e2", "ML", "Home", 2.1, 0.55)

	cfg := DefaultConfig()
	out := BuildParlays([]models.Leg{home, away, filler}, BuildOptions{MaxLegs: 2, MinEV: -1}, cfg)
	for _, p := range out {
		markets := make(map[eventMarket]bool)
		for _, l := range p.Legs {
			k := eventMarket{l.EventID, l.Market}
			if markets[k] {
				t.Fatalf("hedged combination produced with AllowHedgedLegs disabled: %+v", p.Legs)
			}
			markets[k] = true
		}
	}

	cfg.AllowHedgedLegs = true
	out = BuildParlays([]models.Leg{home, away}, BuildOptions{MaxLegs: 2, MinEV: -1}, cfg)
	if len(out) != 1 {
		t.Fatalf("expected the hedged pair to be allowed when configured, got %d", len(out))
	}
}

func TestBuildParlaysSameGameOnly(t *testing.T) {
	pool := []models.Leg{
		edgeLeg("e1", "ML", "Home", 2.1, 0.55),
		edgeLeg("e1", "Total 44.5", "Over", 2.1, 0.55),
		edgeLeg("e2", "ML", "Away", 2.1, 0.55),
	}
	out := BuildParlays(pool, BuildOptions{MaxLegs: 3, MinEV: -1, SameGameOnly: true}, DefaultConfig())
	if len(out) == 0 {
		t.Fatal("expected same-game candidates")
	}
	for _, p := range out {
		for _, l := range p.Legs {
			if l.EventID != p.Legs[0].EventID {
				t.Fatalf("same-game-only candidate spans events: %+v", p.Legs)
			}
		}
	}
}

func TestBuildParlaysSizeFourGating(t *testing.T) {
	pool := []models.Leg{
		edgeLeg("e1", "ML", "A", 2.1, 0.55),
		edgeLeg("e2", "ML", "B", 2.1, 0.55),
		edgeLeg("e3", "ML", "C", 2.1, 0.55),
		edgeLeg("e4", "ML", "D", 2.1, 0.55),
	}
	opts := BuildOptions{MaxLegs: 3, MinEV: -1}
	for _, p := range BuildParlays(pool, opts, DefaultConfig()) {
		if len(p.Legs) > 3 {
			t.Fatalf("size-4 combination produced with max legs 3")
		}
	}

	opts.MaxLegs = 4
	foundFour := false
	for _, p := range BuildParlays(pool, opts, DefaultConfig()) {
		if len(p.Legs) == 4 {
			foundFour = true
		}
	}
	if !foundFour {
		t.Fatal("expected a size-4 combination with max legs 4")
	}
}

func TestBuildParlaysRankingOrder(t *testing.T) {
	pool := []models.Leg{
		edgeLeg("e1", "ML", "A", 2.3, 0.55),
		edgeLeg("e2", "ML", "B", 2.2, 0.55),
		edgeLeg("e3", "ML", "C", 2.1, 0.55),
	}
	out := BuildParlays(pool, BuildOptions{MaxLegs: 3, MinEV: -1}, DefaultConfig())
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1].Valuation, out[i].Valuation
		if cur.ExpectedValue > prev.ExpectedValue {
			t.Fatalf("ranking not descending by EV at %d: %v then %v", i, prev.ExpectedValue, cur.ExpectedValue)
		}
		if cur.ExpectedValue == prev.ExpectedValue && cur.WinProbability > prev.WinProbability {
			t.Fatalf("EV tie not broken by win probability at %d", i)
		}
	}
}

func TestBuildParlaysDiversification(t *testing.T) {
	// Six events give plenty of distinct pairs; diversification must never
	// accept a candidate whose events are all already covered.
	pool := []models.Leg{
		edgeLeg("e1", "ML", "A", 2.2, 0.55),
		edgeLeg("e2", "ML", "B", 2.2, 0.55),
		edgeLeg("e3", "ML", "C", 2.2, 0.55),
		edgeLeg("e4", "ML", "D", 2.2, 0.55),
		edgeLeg("e5", "ML", "E", 2.2, 0.55),
		edgeLeg("e6", "ML", "F", 2.2, 0.55),
	}
	out := BuildParlays(pool, BuildOptions{MaxLegs: 3, MinEV: -1, Diversify: true}, DefaultConfig())
	if len(out) < 3 {
		t.Fatalf("expected a diversified list of at least 3, got %d", len(out))
	}
	seen := make(map[string]bool)
	for _, p := range out {
		novel := false
		for _, id := range p.EventIDs() {
			if !seen[id] {
				novel = true
			}
		}
		if !novel {
			t.Fatalf("diversified list contains fully covered candidate: %v", p.EventIDs())
		}
		for _, id := range p.EventIDs() {
			seen[id] = true
		}
	}
}

func TestBuildParlaysDiversificationFallback(t *testing.T) {
	// Two events produce a single diversified entry; the pass must fall
	// back to the plain ranking instead of returning one row.
	pool := []models.Leg{
		edgeLeg("e1", "ML", "A", 2.2, 0.55),
		edgeLeg("e1", "Total 44.5", "Over", 2.2, 0.55),
		edgeLeg("e2", "ML", "B", 2.2, 0.55),
	}
	plain := BuildParlays(pool, BuildOptions{MaxLegs: 3, MinEV: -1}, DefaultConfig())
	diversified := BuildParlays(pool, BuildOptions{MaxLegs: 3, MinEV: -1, Diversify: true}, DefaultConfig())
	if len(diversified) != len(plain) {
		t.Fatalf("thin-market diversification must fall back to plain ranking: %d vs %d", len(diversified), len(plain))
	}
}

func TestBuildParlaysEmptyAndTinyPools(t *testing.T) {
	if out := BuildParlays(nil, BuildOptions{MaxLegs: 3, MinEV: 0}, DefaultConfig()); len(out) != 0 {
		t.Fatalf("empty pool must produce no parlays, got %d", len(out))
	}
	one := []models.Leg{edgeLeg("e1", "ML", "A", 2.2, 0.55)}
	if out := BuildParlays(one, BuildOptions{MaxLegs: 3, MinEV: 0}, DefaultConfig()); len(out) != 0 {
		t.Fatalf("single-leg pool must produce no parlays, got %d", len(out))
	}
}

func TestBuildParlaysDeduplicatesBeforeEnumeration(t *testing.T) {
	// Scenario: identical selection at 1.80 and 1.95 under the same key;
	// only the better price feeds the candidates.
	low := edgeLeg("e1", "ML", "Home", 1.80, 0.55)
	high := edgeLeg("e1", "ML", "Home", 1.95, 0.55)
	other := edgeLeg("e2", "ML", "Away", 2.0, 0.55)

	out := BuildParlays([]models.Leg{low, high, other}, BuildOptions{MaxLegs: 2, MinEV: -1}, DefaultConfig())
	if len(out) != 1 {
		t.Fatalf("expected exactly one candidate, got %d", len(out))
	}
	for _, l := range out[0].Legs {
		if l.EventID == "e1" && l.DecimalPrice != 1.95 {
			t.Errorf("candidate used the worse duplicate price %v", l.DecimalPrice)
		}
	}
}
