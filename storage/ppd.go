package storage

import (
	"regexp"
	"strings"
	"time"
)

// Comp search defaults.
const (
	DefaultCompMonths = 18
	DefaultCompLimit  = 12
)

// PPDFlat is the Price Paid property type code for flats and maisonettes.
const PPDFlat = "F"

var postcodeRegexp = regexp.MustCompile(`^([A-Z]{1,2}\d[A-Z\d]?)\s*(\d[A-Z]{2})$`)

// CompQuery describes the comps wanted for one subject.
type CompQuery struct {
	Postcode     string
	PropertyType string
	Months       int
	Limit        int
}

func (q CompQuery) withDefaults() CompQuery {
	if q.Months <= 0 {
		q.Months = DefaultCompMonths
	}
	if q.Limit <= 0 {
		q.Limit = DefaultCompLimit
	}
	return q
}

// Cutoff returns the earliest sale date in the window ending at now. A
// month counts as 30 days.
func (q CompQuery) Cutoff(now time.Time) time.Time {
	q = q.withDefaults()
	d := now.UTC().AddDate(0, 0, -30*q.Months)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// PostcodeSector returns the outward code plus the first digit of the
// inward code ("SW1A 1AA" -> "SW1A 1"). Text that is not a full postcode
// yields whatever precedes its first space.
func PostcodeSector(postcode string) string {
	pc := strings.ToUpper(strings.TrimSpace(postcode))
	m := postcodeRegexp.FindStringSubmatch(pc)
	if m == nil {
		return strings.SplitN(pc, " ", 2)[0]
	}
	return m[1] + " " + m[2][:1]
}

// LooksLikeFlat reports whether a free-text property type describes a flat.
func LooksLikeFlat(propertyType string) bool {
	t := strings.ToLower(propertyType)
	return strings.Contains(t, "flat") || strings.Contains(t, "apartment")
}
