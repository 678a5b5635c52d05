package models

import "time"

// Recognised score labels, highest band first.
const (
	LabelReasonable = "Reasonably priced"
	LabelPremium    = "Slight premium / negotiate"
	LabelOverpriced = "Overpriced unless there's hidden value"
	LabelStretch    = "Stretch pricing / proceed cautiously"
)

// Valuation is the engine output. Raw numbers and their display strings are
// both carried so the page, the JSON API and the markdown export never have
// to recompute anything.
type Valuation struct {
	FairValueLow    *int     `json:"fair_value_low"`
	FairValueMid    *int     `json:"fair_value_mid"`
	FairValueHigh   *int     `json:"fair_value_high"`
	FairValueRange  *string  `json:"fair_value_range"`
	AskingVsMid     *string  `json:"asking_vs_mid"`
	AskingVsMidPct  *float64 `json:"asking_vs_mid_pct"`
	Score           *int     `json:"score"`
	Label           *string  `json:"label"`
	OfferAnchor     *int     `json:"offer_anchor"`
	OfferLow        *int     `json:"offer_low"`
	OfferHigh       *int     `json:"offer_high"`
	OfferAnchorText *string  `json:"offer_anchor_display"`
	OfferBand       *string  `json:"offer_band"`
	Notes           []string `json:"notes"`
	CompsUsed       int      `json:"comps_used"`
}

// Analysis is one stored run: inputs, output and rendered report.
type Analysis struct {
	ID         int64         `json:"id"`
	CreatedAt  time.Time     `json:"created_at_utc"`
	URL        string        `json:"url"`
	PropertyID string        `json:"property_id"`
	Facts      *ListingFacts `json:"facts"`
	Comps      []Comp        `json:"comps"`
	Valuation  *Valuation    `json:"valuation"`
	Report     string        `json:"md_report"`
}

// AnalysisSummary is the dashboard row for a stored analysis.
type AnalysisSummary struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at_utc"`
	URL          string    `json:"url"`
	PropertyID   string    `json:"property_id"`
	Score        *int      `json:"score"`
	Label        *string   `json:"label"`
	FairValueMid *int      `json:"fair_value_mid"`
}

// InsightReport holds aggregate figures over stored analyses.
type InsightReport struct {
	TotalAnalyses   int
	ScoredAnalyses  int
	AverageScore    float64
	BestScored      *AnalysisSummary
	LabelCounts     map[string]int
	MedianFairValue *float64
}
