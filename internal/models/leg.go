package models

import "time"

// Leg is a single priced, fair-probability-adjusted selection eligible for
// inclusion in a parlay. Legs are created by the extractor and immutable
// thereafter.
type Leg struct {
	EventID       string    `json:"event_id"`
	CommenceTime  time.Time `json:"commence_time"`
	Market        string    `json:"market"`
	Selection     string    `json:"selection"`
	DecimalPrice  float64   `json:"decimal_price"`
	AmericanPrice float64   `json:"american_price"`
	FairProb      float64   `json:"fair_prob"`
	Book          string    `json:"book"`
	Note          string    `json:"note,omitempty"`
}

// LegKey is the deduplication identity of a leg. When the same key appears
// more than once in a pool, the leg with the higher decimal price wins.
type LegKey struct {
	EventID   string
	Market    string
	Selection string
	Book      string
}

// Key returns the leg's deduplication identity.
func (l Leg) Key() LegKey {
	return LegKey{EventID: l.EventID, Market: l.Market, Selection: l.Selection, Book: l.Book}
}

// SelectionKey identifies a logical bet independent of the book quoting it.
// A parlay may never contain the same SelectionKey twice.
type SelectionKey struct {
	EventID   string
	Market    string
	Selection string
}

// Selection returns the leg's book-independent bet identity.
func (l Leg) SelectionKey() SelectionKey {
	return SelectionKey{EventID: l.EventID, Market: l.Market, Selection: l.Selection}
}

// FairEdge returns the single-leg expected value per unit stake at the fair
// probability. Used to pre-rank oversized pools before enumeration.
func (l Leg) FairEdge() float64 {
	return l.FairProb*l.DecimalPrice - 1
}
