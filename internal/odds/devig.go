package odds

// Default overround acceptance band for two-way markets. Markets outside the
// band are treated as malformed or non-standard and excluded from pricing.
const (
	DefaultOverroundMin = 0.98
	DefaultOverroundMax = 1.10
)

// DevigTwoWay strips the bookmaker margin from a two-way market's raw implied
// probabilities. The returned fair probabilities sum to exactly 1 by
// construction; overround is the raw sum p1+p2. Callers are expected to gate
// on the overround band before trusting the fair probabilities.
func DevigTwoWay(p1, p2 float64) (fair1, fair2, overround float64) {
	s := p1 + p2
	if s <= 0 {
		return 0, 0, 0
	}
	return p1 / s, p2 / s, s
}

// Band is an overround acceptance interval.
type Band struct {
	Min float64
	Max float64
}

// DefaultBand returns the standard two-way acceptance band.
func DefaultBand() Band {
	return Band{Min: DefaultOverroundMin, Max: DefaultOverroundMax}
}

// Accepts reports whether an overround falls inside the band.
func (b Band) Accepts(overround float64) bool {
	return overround >= b.Min && overround <= b.Max
}
