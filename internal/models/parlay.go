package models

// Valuation holds the pricing outputs for one parlay candidate. It is a value
// object recomputed on every engine invocation, never mutated in place.
type Valuation struct {
	DecimalPrice   float64 `json:"decimal_price"`
	AmericanPrice  float64 `json:"american_price"`
	WinProbability float64 `json:"win_probability"`
	ExpectedValue  float64 `json:"expected_value"`
	KellyRaw       float64 `json:"kelly_raw"`
	KellyClipped   float64 `json:"kelly_clipped"`
	StakeFraction  float64 `json:"stake_fraction"`
	SuggestedStake float64 `json:"suggested_stake"`
	Correlation    float64 `json:"correlation"`
}

// Parlay is a valued candidate: an ordered set of 2-4 legs plus its valuation.
type Parlay struct {
	Legs      []Leg     `json:"legs"`
	Valuation Valuation `json:"valuation"`
}

// EventIDs returns the distinct event ids covered by the parlay, in leg order.
func (p Parlay) EventIDs() []string {
	seen := make(map[string]bool, len(p.Legs))
	ids := make([]string, 0, len(p.Legs))
	for _, leg := range p.Legs {
		if !seen[leg.EventID] {
			seen[leg.EventID] = true
			ids = append(ids, leg.EventID)
		}
	}
	return ids
}
