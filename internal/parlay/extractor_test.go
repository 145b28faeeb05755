package parlay

import (
	"math"
	"testing"
	"time"

	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

func ptr(f float64) *float64 { return &f }

func fixtureEvent(id string, markets ...models.Market) models.Event {
	return models.Event{
		ID:           id,
		SportKey:     "basketball_nba",
		CommenceTime: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		HomeTeam:     "Home",
		AwayTeam:     "Away",
		Bookmakers: []models.Bookmaker{
			{Key: "draftkings", Title: "DraftKings", Markets: markets},
		},
	}
}

func TestExtractLegsStandardMoneyline(t *testing.T) {
	event := fixtureEvent("e1", models.Market{
		Key: models.MarketMoneyline,
		Outcomes: []models.Outcome{
			{Name: "Home", Price: -110},
			{Name: "Away", Price: -110},
		},
	})

	pool := ExtractLegs([]models.Event{event}, DefaultConfig(), nil)
	if len(pool) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(pool))
	}
	for _, l := range pool {
		if l.Market != "ML" {
			t.Errorf("market label = %q, want ML", l.Market)
		}
		if math.Abs(l.FairProb-0.5) > 1e-9 {
			t.Errorf("fair prob = %v, want 0.5 for symmetric -110 market", l.FairProb)
		}
		if math.Abs(l.DecimalPrice-(1+100.0/110.0)) > 1e-9 {
			t.Errorf("decimal price = %v", l.DecimalPrice)
		}
		if l.Book != "draftkings" {
			t.Errorf("book = %q", l.Book)
		}
	}
	if math.Abs((pool[0].FairProb+pool[1].FairProb)-1.0) > 1e-12 {
		t.Errorf("fair probabilities must sum to 1, got %v", pool[0].FairProb+pool[1].FairProb)
	}
}

func TestExtractLegsTotalsOrderIndependent(t *testing.T) {
	under := models.Outcome{Name: "Under", Price: -105, Point: ptr(221.5)}
	over := models.Outcome{Name: "Over", Price: -115, Point: ptr(221.5)}

	forward := fixtureEvent("e1", models.Market{Key: models.MarketTotals, Outcomes: []models.Outcome{over, under}})
	reversed := fixtureEvent("e1", models.Market{Key: models.MarketTotals, Outcomes: []models.Outcome{under, over}})

	cfg := DefaultConfig()
	a := ExtractLegs([]models.Event{forward}, cfg, nil)
	b := ExtractLegs([]models.Event{reversed}, cfg, nil)
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected 2 legs each, got %d and %d", len(a), len(b))
	}
	if a[0].Selection != "Over" || b[0].Selection != "Over" {
		t.Errorf("totals must pair Over first regardless of source order, got %q and %q", a[0].Selection, b[0].Selection)
	}
	for i := range a {
		if a[i].Market != "Total 221.5" {
			t.Errorf("market label = %q, want Total 221.5", a[i].Market)
		}
		if math.Abs(a[i].FairProb-b[i].FairProb) > 1e-12 {
			t.Errorf("fair prob depends on source ordering: %v vs %v", a[i].FairProb, b[i].FairProb)
		}
	}
}

func TestExtractLegsSpreadLabel(t *testing.T) {
	event := fixtureEvent("e1", models.Market{
		Key: models.MarketSpreads,
		Outcomes: []models.Outcome{
			{Name: "Home", Price: -110, Point: ptr(-3.5)},
			{Name: "Away", Price: -110, Point: ptr(3.5)},
		},
	})
	pool := ExtractLegs([]models.Event{event}, DefaultConfig(), nil)
	if len(pool) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(pool))
	}
	for _, l := range pool {
		if l.Market != "Spread -3.5" {
			t.Errorf("market label = %q, want Spread -3.5", l.Market)
		}
	}
}

func TestExtractLegsOverroundGate(t *testing.T) {
	// -200/-200 implies 1.333 overround: excluded regardless of price appeal.
	event := fixtureEvent("e1", models.Market{
		Key: models.MarketMoneyline,
		Outcomes: []models.Outcome{
			{Name: "Home", Price: -200},
			{Name: "Away", Price: -200},
		},
	})
	pool := ExtractLegs([]models.Event{event}, DefaultConfig(), nil)
	if len(pool) != 0 {
		t.Fatalf("market with overround 1.33 must be excluded, got %d legs", len(pool))
	}
}

func TestExtractLegsSkipsBadRecordsNotPool(t *testing.T) {
	bad := models.Market{
		Key: models.MarketMoneyline,
		Outcomes: []models.Outcome{
			{Name: "Home", Price: 0},
			{Name: "Away", Price: -110},
		},
	}
	good := models.Market{
		Key: models.MarketTotals,
		Outcomes: []models.Outcome{
			{Name: "Over", Price: -110, Point: ptr(44.5)},
			{Name: "Under", Price: -110, Point: ptr(44.5)},
		},
	}
	short := models.Market{
		Key:      models.MarketSpreads,
		Outcomes: []models.Outcome{{Name: "Home", Price: -110, Point: ptr(-3.5)}},
	}
	unknown := models.Market{
		Key: "player_points",
		Outcomes: []models.Outcome{
			{Name: "Over", Price: -110},
			{Name: "Under", Price: -110},
		},
	}

	event := fixtureEvent("e1", bad, good, short, unknown)
	pool := ExtractLegs([]models.Event{event}, DefaultConfig(), nil)
	if len(pool) != 2 {
		t.Fatalf("expected only the valid totals market to survive, got %d legs", len(pool))
	}
	if pool[0].Market != "Total 44.5" {
		t.Errorf("surviving market = %q", pool[0].Market)
	}
}

func TestDedupePoolKeepsBestPrice(t *testing.T) {
	a := leg("e1", "ML", "Home", 1.80, 0.5)
	b := leg("e1", "ML", "Home", 1.95, 0.5)
	c := leg("e1", "ML", "Home", 1.85, 0.5)

	out := DedupePool([]models.Leg{a, b, c})
	if len(out) != 1 {
		t.Fatalf("expected 1 leg after dedupe, got %d", len(out))
	}
	if out[0].DecimalPrice != 1.95 {
		t.Errorf("dedupe kept price %v, want 1.95", out[0].DecimalPrice)
	}
}

func TestDedupePoolDistinctBooksSurvive(t *testing.T) {
	a := leg("e1", "ML", "Home", 1.80, 0.5)
	b := leg("e1", "ML", "Home", 1.95, 0.5)
	b.Book = "fanduel"

	out := DedupePool([]models.Leg{a, b})
	if len(out) != 2 {
		t.Fatalf("same selection at different books must both survive, got %d", len(out))
	}
}

func TestCapPoolKeepsHighestEdge(t *testing.T) {
	pool := []models.Leg{
		leg("e1", "ML", "A", 2.0, 0.45),
		leg("e2", "ML", "B", 2.0, 0.55),
		leg("e3", "ML", "C", 2.0, 0.50),
	}
	out := capPool(pool, 2)
	if len(out) != 2 {
		t.Fatalf("expected capped pool of 2, got %d", len(out))
	}
	if out[0].Selection != "B" || out[1].Selection != "C" {
		t.Errorf("cap must keep the highest fair-edge legs, got %q %q", out[0].Selection, out[1].Selection)
	}
}
