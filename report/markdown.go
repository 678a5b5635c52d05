// Package report renders an analysis as a fixed-layout markdown document.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"propertyedge/models"
	"propertyedge/valuation"
)

// Placeholder stands in for any value that is not known.
const Placeholder = "—"

const maxFeatures = 8

// Compose lays out facts, comps and valuation. It does no computation, adds
// no timestamp and tolerates any nil optional field, so equal inputs give
// byte-identical output.
func Compose(facts *models.ListingFacts, comps []models.Comp, v *models.Valuation) string {
	if facts == nil {
		facts = &models.ListingFacts{}
	}
	if v == nil {
		v = &models.Valuation{}
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("# PropertyEdge Report — %s", orDash(facts.PropertyID))
	line("")
	line("**Source:** %s", orDash(facts.URL))
	line("")

	line("## Fact Card")
	line("- Asking price: %s", pounds(facts.Price))
	line("- Address: %s", str(facts.Address))
	line("- Postcode: %s", str(facts.Postcode))
	line("- Type: %s", str(facts.PropertyType))
	line("- Tenure: %s", str(facts.Tenure))
	line("- Beds/Baths: %s/%s", integer(facts.Bedrooms), integer(facts.Bathrooms))
	line("- Size: %s", size(facts))
	line("- EPC: %s", str(facts.EPCRating))
	if len(facts.KeyFeatures) > 0 {
		shown := facts.KeyFeatures
		more := ""
		if len(shown) > maxFeatures {
			shown, more = shown[:maxFeatures], "…"
		}
		line("- Key features: %s%s", strings.Join(shown, ", "), more)
	}
	line("")

	line("## Sold comps (Land Registry PPD)")
	if len(comps) == 0 {
		line("- None found.")
	} else {
		line("| Sold date | Sold price | Postcode | Type | Street/Town |")
		line("|---|---:|---|---|---|")
		for _, c := range comps {
			line("| %s | %s | %s | %s | %s |", c.Date, valuation.FormatPounds(c.Price),
				c.Postcode, c.PropertyType, streetTown(c))
		}
	}
	line("")

	line("## Valuation")
	line("- Fair value (low/mid/high): %s", str(v.FairValueRange))
	line("- Asking vs fair-mid: %s", str(v.AskingVsMid))
	line("- PropertyEdge score: %s — %s", integer(v.Score), str(v.Label))
	line("- Offer anchor: %s", str(v.OfferAnchorText))
	line("- Offer band: %s", str(v.OfferBand))
	line("- Comps used: %d", v.CompsUsed)
	if len(v.Notes) > 0 {
		line("")
		line("### Notes")
		for _, n := range v.Notes {
			line("- %s", n)
		}
	}
	line("")
	b.WriteString("**Disclaimer:** Educational content only — not a professional valuation or financial advice.")
	return b.String()
}

func size(f *models.ListingFacts) string {
	if f.FloorAreaSqm == nil || *f.FloorAreaSqm <= 0 {
		return Placeholder
	}
	sqft := Placeholder
	if f.FloorAreaSqft != nil {
		sqft = strconv.Itoa(int(*f.FloorAreaSqft))
	}
	return fmt.Sprintf("%.2f sqm (%s sq ft)", *f.FloorAreaSqm, sqft)
}

func streetTown(c models.Comp) string {
	parts := make([]string, 0, 2)
	for _, p := range []*string{c.Street, c.Town} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func str(p *string) string {
	if p == nil {
		return Placeholder
	}
	return orDash(*p)
}

func integer(p *int) string {
	if p == nil {
		return Placeholder
	}
	return strconv.Itoa(*p)
}

func pounds(p *int) string {
	if p == nil {
		return Placeholder
	}
	return valuation.FormatPounds(*p)
}
