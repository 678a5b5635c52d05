package valuation

import (
	"fmt"
	"math"

	"propertyedge/models"
)

const (
	// BaselineFloorAreaSqm is the typical comparator size the band is
	// scaled against.
	BaselineFloorAreaSqm = 68.0

	MinSizeAdjustment = 0.92
	MaxSizeAdjustment = 1.10
)

const (
	noteNoComps     = "No sold comps found (PPD data not loaded or no matches in postcode sector/time window)."
	noteNoQuartiles = "Insufficient comp distribution to compute quartiles."
)

// FairValue is the comp-derived price band before display rounding.
type FairValue struct {
	Low        *int
	Mid        *int
	High       *int
	Adjustment float64
	Notes      []string
}

// SizeAdjustment scales comp prices by sqrt(area/baseline), clamped to
// [MinSizeAdjustment, MaxSizeAdjustment]. Unknown area gives exactly 1.
func SizeAdjustment(floorAreaSqm *float64) float64 {
	if !knownArea(floorAreaSqm) {
		return 1.0
	}
	adj := math.Sqrt(*floorAreaSqm / BaselineFloorAreaSqm)
	return math.Max(MinSizeAdjustment, math.Min(MaxSizeAdjustment, adj))
}

// EstimateFairValue derives the low/mid/high band from the 25th percentile,
// median and 75th percentile of comp prices, scaled for floor area.
func EstimateFairValue(facts *models.ListingFacts, comps []models.Comp) FairValue {
	fv := FairValue{Adjustment: 1.0}
	if len(comps) == 0 {
		fv.Notes = append(fv.Notes, noteNoComps)
		return fv
	}

	prices := make([]float64, 0, len(comps))
	for _, c := range comps {
		if c.Price > 0 {
			prices = append(prices, float64(c.Price))
		}
	}

	q25, ok25 := Quantile(prices, 0.25)
	mid, okMid := Median(prices)
	q75, ok75 := Quantile(prices, 0.75)
	if !ok25 || !okMid || !ok75 {
		fv.Notes = append(fv.Notes, noteNoQuartiles)
		return fv
	}

	var area *float64
	if facts != nil {
		area = facts.FloorAreaSqm
	}
	fv.Adjustment = SizeAdjustment(area)

	low := int(q25 * fv.Adjustment)
	m := int(mid * fv.Adjustment)
	high := int(q75 * fv.Adjustment)
	fv.Low, fv.Mid, fv.High = &low, &m, &high

	fv.Notes = append(fv.Notes, fmt.Sprintf("Comp quartiles (unadjusted): Q25≈%s, Median≈%s, Q75≈%s.",
		FormatPounds(int(q25)), FormatPounds(int(mid)), FormatPounds(int(q75))))
	if knownArea(area) {
		fv.Notes = append(fv.Notes, fmt.Sprintf(
			"Applied light size adjustment factor ≈ %.3f based on %.1f sqm vs baseline %.0f sqm.",
			fv.Adjustment, *area, BaselineFloorAreaSqm))
	}
	return fv
}

func knownArea(sqm *float64) bool {
	return sqm != nil && *sqm > 0
}
