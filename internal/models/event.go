package models

import "time"

// Market keys as used by The Odds API v4.
const (
	MarketMoneyline = "h2h"
	MarketSpreads   = "spreads"
	MarketTotals    = "totals"
)

// DefaultMarkets is the market set scanned when the caller does not narrow it.
var DefaultMarkets = []string{MarketMoneyline, MarketSpreads, MarketTotals}

// Event represents one scheduled game with its bookmaker prices, as returned
// by the odds provider. Events are immutable inputs to the engine.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker represents one book's quoted markets for an event.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market represents one priced market (moneyline, spread, total) at one book.
type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Outcome represents one side of a market. Price is in American format;
// Point is set for spreads and totals.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}
