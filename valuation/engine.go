package valuation

import "propertyedge/models"

// Evaluate runs the full pipeline for one subject: fair value, score and
// offer. Notes from every stage are kept in order. Neither input is
// modified.
func Evaluate(facts *models.ListingFacts, comps []models.Comp) *models.Valuation {
	fv := EstimateFairValue(facts, comps)
	sc := Score(facts, fv.Mid, len(comps))
	of := OfferStrategy(facts, fv.Low, fv.Mid)

	v := &models.Valuation{
		Score:       sc.Score,
		Label:       sc.Label,
		OfferAnchor: of.Anchor,
		OfferLow:    of.Low,
		OfferHigh:   of.High,
		CompsUsed:   len(comps),
	}
	v.Notes = make([]string, 0, len(fv.Notes)+len(sc.Notes)+len(of.Notes))
	v.Notes = append(v.Notes, fv.Notes...)
	v.Notes = append(v.Notes, sc.Notes...)
	v.Notes = append(v.Notes, of.Notes...)

	v.FairValueLow = roundedPtr(fv.Low)
	v.FairValueMid = roundedPtr(fv.Mid)
	v.FairValueHigh = roundedPtr(fv.High)
	if v.FairValueLow != nil && v.FairValueMid != nil && v.FairValueHigh != nil {
		r := FormatRange(*v.FairValueLow, *v.FairValueMid, *v.FairValueHigh)
		v.FairValueRange = &r
	}

	if facts != nil && facts.Price != nil && fv.Mid != nil {
		if pct, ok := PercentageDelta(float64(*facts.Price), float64(*fv.Mid)); ok {
			s := FormatSignedPct(pct)
			v.AskingVsMidPct = &pct
			v.AskingVsMid = &s
		}
	}

	if of.Anchor != nil {
		s := FormatPounds(*of.Anchor)
		v.OfferAnchorText = &s
	}
	if of.Low != nil && of.High != nil {
		s := FormatBand(*of.Low, *of.High)
		v.OfferBand = &s
	}
	return v
}

func roundedPtr(x *int) *int {
	if x == nil {
		return nil
	}
	r := RoundToNearest(*x, CurrencyRoundingBase)
	return &r
}
