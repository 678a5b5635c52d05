package valuation

import (
	"fmt"
	"math"
	"strings"

	"propertyedge/models"
)

// Component ceilings and neutral values. The weights do not sum to 100
// under neutral inputs and are not renormalised.
const (
	maxPriceComponent  = 40
	priceZeroDeviation = 15.0
	maxCompPoints      = 10
	floorAreaPoints    = 10
	tenureFreehold     = 15
	tenureLeasehold    = 10
	tenureUnknown      = 8
	energyUnknown      = 8
	behaviorComponent  = 6
)

const noteNoScore = "Score unavailable (missing asking price or fair-mid)."

// ScoreResult is the reasonableness score with its label.
type ScoreResult struct {
	Score *int
	Label *string
	Notes []string
}

// Score rates how fairly the asking price sits against fairMid on a 0-100
// scale. Without an asking price or a fair mid there is no score.
func Score(facts *models.ListingFacts, fairMid *int, compsUsed int) ScoreResult {
	if facts == nil || facts.Price == nil || fairMid == nil {
		return ScoreResult{Notes: []string{noteNoScore}}
	}

	deviationPct, ok := PercentageDelta(float64(*facts.Price), float64(*fairMid))
	if !ok {
		return ScoreResult{Notes: []string{noteNoScore}}
	}
	price := PriceComponent(math.Abs(deviationPct))

	total := price +
		DataComponent(facts.FloorAreaSqm, compsUsed) +
		TenureComponent(facts.Tenure) +
		EnergyComponent(facts.EPCRating) +
		behaviorComponent
	total = max(0, min(100, total))
	label := Label(total)

	return ScoreResult{
		Score: &total,
		Label: &label,
		Notes: []string{fmt.Sprintf("Asking vs fair-mid deviation ≈ %+.1f%%. Price component=%d/%d.",
			deviationPct, price, maxPriceComponent)},
	}
}

// PriceComponent is 40 at zero deviation, falling linearly to 0 at 15%.
func PriceComponent(deviation float64) int {
	return max(0, maxPriceComponent-int(deviation/priceZeroDeviation*maxPriceComponent))
}

// DataComponent awards completeness: 10 for a known floor area plus one
// point per comp up to 10.
func DataComponent(floorAreaSqm *float64, compsUsed int) int {
	points := min(maxCompPoints, max(0, compsUsed))
	if knownArea(floorAreaSqm) {
		points += floorAreaPoints
	}
	return points
}

// TenureComponent recognises "free..." and "lease..." prefixes; anything
// else, including unknown, is mildly negative rather than zero.
func TenureComponent(tenure *string) int {
	if tenure == nil {
		return tenureUnknown
	}
	t := strings.ToLower(strings.TrimSpace(*tenure))
	switch {
	case strings.HasPrefix(t, "free"):
		return tenureFreehold
	case strings.HasPrefix(t, "lease"):
		return tenureLeasehold
	default:
		return tenureUnknown
	}
}

// EnergyComponent maps an EPC letter grade to points.
func EnergyComponent(rating *string) int {
	if rating == nil || strings.TrimSpace(*rating) == "" {
		return energyUnknown
	}
	switch strings.ToUpper(strings.TrimSpace(*rating)) {
	case "A", "B":
		return 15
	case "C":
		return 12
	case "D":
		return 9
	default:
		return 7
	}
}

// Label maps a score to its band. Lower bounds are inclusive.
func Label(score int) string {
	switch {
	case score >= 80:
		return models.LabelReasonable
	case score >= 60:
		return models.LabelPremium
	case score >= 40:
		return models.LabelOverpriced
	default:
		return models.LabelStretch
	}
}
