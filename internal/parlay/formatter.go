package parlay

import (
	"fmt"
	"strings"

	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// FormatSummary returns the title line for a ranked parlay listing.
func FormatSummary(sport string, minEV float64) string {
	return fmt.Sprintf("EV Parlays: %s (min EV %.1f%%)", strings.ToUpper(sport), minEV*100)
}

// FormatParlayFields renders one ranked parlay as a display name and body.
// The index is one-based as shown to the user.
func FormatParlayFields(index int, p models.Parlay) (string, string) {
	v := p.Valuation
	name := fmt.Sprintf("#%d  %s (%.2f) | EV %+.3f", index, FormatAmerican(v.AmericanPrice), v.DecimalPrice, v.ExpectedValue)

	var body strings.Builder
	for _, leg := range p.Legs {
		fmt.Fprintf(&body, "%s | %s | %s | %s (%.2f)\n",
			leg.Selection, leg.Market, leg.Book, FormatAmerican(leg.AmericanPrice), leg.DecimalPrice)
	}
	fmt.Fprintf(&body, "Win %.2f%% | Price %.2f (%s) | EV %+.3f | Corr %.3f | Stake $%.2f",
		v.WinProbability*100, v.DecimalPrice, FormatAmerican(v.AmericanPrice),
		v.ExpectedValue, v.Correlation, v.SuggestedStake)

	return name, body.String()
}

// FormatAmerican renders American odds with an explicit sign.
func FormatAmerican(a float64) string {
	if a > 0 {
		return fmt.Sprintf("+%.0f", a)
	}
	return fmt.Sprintf("%.0f", a)
}
