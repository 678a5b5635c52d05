package models

import "time"

// RawListing holds unprocessed values pulled out of a listing page.
// Every field is the text as found; the cleaner decides what it means.
type RawListing struct {
	URL          string
	PropertyID   string
	Address      string
	Postcode     string
	Price        string
	Bedrooms     string
	Bathrooms    string
	PropertyType string
	Tenure       string
	FloorArea    string
	EPCRating    string
	KeyFeatures  []string
	ScrapedAt    time.Time
}

// ListingFacts is one subject property after cleaning. A nil pointer means
// the value was not found on the page; it is never replaced by zero.
type ListingFacts struct {
	URL           string   `json:"url"`
	PropertyID    string   `json:"property_id"`
	Address       *string  `json:"address"`
	Postcode      *string  `json:"postcode"`
	Price         *int     `json:"price"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	PropertyType  *string  `json:"property_type"`
	Tenure        *string  `json:"tenure"`
	FloorAreaSqm  *float64 `json:"floor_area_sqm"`
	FloorAreaSqft *float64 `json:"floor_area_sqft"`
	EPCRating     *string  `json:"epc_rating"`
	KeyFeatures   []string `json:"key_features"`
}

// Comp is a comparable sale from the Price Paid data.
type Comp struct {
	Price        int     `json:"price"`
	Date         string  `json:"date"`
	Postcode     string  `json:"postcode"`
	PropertyType string  `json:"property_type"`
	Street       *string `json:"street"`
	Town         *string `json:"town"`
}
