package valuation

import "propertyedge/models"

const (
	anchorOfMid      = 0.95
	anchorFloorOfLow = 0.98
	bandBelowAnchor  = 0.98
	bandAboveAnchor  = 1.02
)

const (
	noteNoOffer     = "Offer strategy unavailable (missing asking price or fair-mid)."
	noteOfferAnchor = "Offer anchor set near 95% of fair-mid (rounded to nearest £1k)."
)

// Offer is the recommended opening offer and its negotiation band, each
// rounded to the nearest £1,000.
type Offer struct {
	Anchor *int
	Low    *int
	High   *int
	Notes  []string
}

// OfferStrategy anchors at 95% of fairMid, never below 98% of fairLow when
// that is known, with a ±2% band around the anchor.
func OfferStrategy(facts *models.ListingFacts, fairLow, fairMid *int) Offer {
	if facts == nil || facts.Price == nil || fairMid == nil {
		return Offer{Notes: []string{noteNoOffer}}
	}

	anchor := int(float64(*fairMid) * anchorOfMid)
	if fairLow != nil {
		anchor = max(anchor, int(float64(*fairLow)*anchorFloorOfLow))
	}
	low := int(float64(anchor) * bandBelowAnchor)
	high := int(float64(anchor) * bandAboveAnchor)

	anchor = RoundToNearest(anchor, CurrencyRoundingBase)
	low = RoundToNearest(low, CurrencyRoundingBase)
	high = RoundToNearest(high, CurrencyRoundingBase)

	return Offer{
		Anchor: &anchor,
		Low:    &low,
		High:   &high,
		Notes:  []string{noteOfferAnchor},
	}
}
