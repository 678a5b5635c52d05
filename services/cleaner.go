package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"propertyedge/models"
	"propertyedge/utils"
)

const sqftToSqm = 0.092903

var (
	// nonDigitRegexp matches everything a money string can carry besides digits
	nonDigitRegexp = regexp.MustCompile(`\D`)
	// intRegexp captures the first whole number, e.g. "3 bedrooms" → 3
	intRegexp = regexp.MustCompile(`\d+`)
	// floatRegexp captures the first decimal number, e.g. "72.5 sq m" → 72.5
	floatRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// sqftRegexp captures "1,001 sq ft"-style sizes from key features
	sqftRegexp = regexp.MustCompile(`(?i)(\d{3,5})\s*(sq\s*ft|sqft)`)
)

// Cleaner turns raw listing strings into typed ListingFacts.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean converts raw into facts. Values that cannot be read are left nil.
func (c *Cleaner) Clean(raw *models.RawListing) *models.ListingFacts {
	if raw == nil {
		return nil
	}

	facts := &models.ListingFacts{
		URL:          strings.TrimSpace(raw.URL),
		PropertyID:   strings.TrimSpace(raw.PropertyID),
		Address:      optionalText(raw.Address),
		Postcode:     optionalText(raw.Postcode),
		Price:        parseMoney(raw.Price),
		Bedrooms:     parseInt(raw.Bedrooms),
		Bathrooms:    parseInt(raw.Bathrooms),
		PropertyType: optionalText(raw.PropertyType),
		Tenure:       optionalText(raw.Tenure),
		FloorAreaSqm: parsePositiveFloat(raw.FloorArea),
		EPCRating:    parseEPC(raw.EPCRating),
		KeyFeatures:  cleanFeatures(raw.KeyFeatures),
	}
	c.fillFloorArea(facts)

	c.logger.Debug("[cleaner] Property %s: price=%v sqm=%v postcode=%v",
		facts.PropertyID, deref(facts.Price), deref(facts.FloorAreaSqm), deref(facts.Postcode))
	return facts
}

// fillFloorArea reads a sq ft size from the key features when no floor
// area was given, and derives whichever unit is still missing.
func (c *Cleaner) fillFloorArea(f *models.ListingFacts) {
	if f.FloorAreaSqm == nil && len(f.KeyFeatures) > 0 {
		joined := strings.Join(f.KeyFeatures, " | ")
		if m := sqftRegexp.FindStringSubmatch(joined); m != nil {
			sqft, _ := strconv.ParseFloat(m[1], 64)
			sqm := math.Round(sqft*sqftToSqm*100) / 100
			f.FloorAreaSqft = &sqft
			f.FloorAreaSqm = &sqm
			c.logger.Debug("[cleaner] Floor area from features: %.0f sq ft ≈ %.2f sqm", sqft, sqm)
		}
	}
	if f.FloorAreaSqft == nil && f.FloorAreaSqm != nil {
		sqft := math.Round(*f.FloorAreaSqm / sqftToSqm)
		f.FloorAreaSqft = &sqft
	}
}

// parseMoney keeps only the digits of raw. "£325,000" → 325000; an empty
// or zero amount is absent.
func parseMoney(raw string) *int {
	digits := nonDigitRegexp.ReplaceAllString(raw, "")
	if digits == "" {
		return nil
	}
	v, err := strconv.Atoi(digits)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func parseInt(raw string) *int {
	match := intRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &v
}

func parsePositiveFloat(raw string) *float64 {
	match := floatRegexp.FindString(strings.ReplaceAll(raw, ",", ""))
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func parseEPC(raw string) *string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	return &s
}

func cleanFeatures(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if f = normaliseText(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func optionalText(s string) *string {
	s = normaliseText(s)
	if s == "" {
		return nil
	}
	return &s
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
