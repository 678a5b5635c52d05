package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertyedge/models"
	"propertyedge/report"
	"propertyedge/storage"
	"propertyedge/utils"
	"propertyedge/valuation"
)

// ErrEmptyURL is returned by Analyze when no listing link was given.
var ErrEmptyURL = errors.New("analyze: empty listing URL")

// ListingScraper fetches the raw facts of one listing.
type ListingScraper interface {
	Scrape(ctx context.Context, url string) (*models.RawListing, error)
}

// AnalyzerOptions tunes comp search and batch concurrency. Zero values
// fall back to the storage defaults and a single worker.
type AnalyzerOptions struct {
	CompMonths     int
	CompLimit      int
	MaxConcurrency int
	RateLimitMs    int
}

// Analyzer runs a listing through fetch, clean, comps, valuation and
// report, and stores the result.
type Analyzer struct {
	scraper ListingScraper
	cleaner *Cleaner
	comps   storage.CompFinder
	store   storage.AnalysisStore
	logger  *utils.Logger
	opts    AnalyzerOptions
	now     func() time.Time
}

// NewAnalyzer wires an Analyzer. comps may be nil when no Price Paid data
// is configured; every analysis then reports that no comps were found.
func NewAnalyzer(scraper ListingScraper, cleaner *Cleaner, comps storage.CompFinder,
	store storage.AnalysisStore, logger *utils.Logger, opts AnalyzerOptions) *Analyzer {
	return &Analyzer{
		scraper: scraper,
		cleaner: cleaner,
		comps:   comps,
		store:   store,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}
}

// Analyze values the listing at url and returns the stored analysis.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*models.Analysis, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrEmptyURL
	}

	raw, err := a.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("analyze: no listing data for %s", url)
	}
	facts := a.cleaner.Clean(raw)
	comps := a.findComps(ctx, facts)

	v := valuation.Evaluate(facts, comps)
	analysis := &models.Analysis{
		CreatedAt:  a.now().UTC(),
		URL:        url,
		PropertyID: facts.PropertyID,
		Facts:      facts,
		Comps:      comps,
		Valuation:  v,
		Report:     report.Compose(facts, comps, v),
	}

	id, err := a.store.Save(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("analyze: save: %w", err)
	}
	analysis.ID = id

	a.logger.Info("[analyzer] #%d property %s: %d comps, score %s",
		id, facts.PropertyID, len(comps), scoreText(v))
	return analysis, nil
}

// findComps never fails the analysis: a lookup error is logged and the
// listing is valued without comps.
func (a *Analyzer) findComps(ctx context.Context, facts *models.ListingFacts) []models.Comp {
	comps := []models.Comp{}
	if a.comps == nil || facts.Postcode == nil {
		return comps
	}

	q := storage.CompQuery{
		Postcode: *facts.Postcode,
		Months:   a.opts.CompMonths,
		Limit:    a.opts.CompLimit,
	}
	if facts.PropertyType != nil {
		q.PropertyType = *facts.PropertyType
	}

	found, err := a.comps.FindComps(ctx, q)
	if err != nil {
		a.logger.Warn("[analyzer] Comp lookup failed for %s: %v", q.Postcode, err)
		return comps
	}
	return append(comps, found...)
}

// BatchResult is the outcome for one URL of AnalyzeBatch.
type BatchResult struct {
	URL      string
	Analysis *models.Analysis
	Err      error
}

// AnalyzeBatch analyses each distinct URL on the worker pool. Results keep
// the order in which URLs first appear; blanks and repeats are dropped.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, urls []string) []BatchResult {
	seen := utils.NewKeySet()
	var results []BatchResult
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || !seen.Add(u) {
			continue
		}
		results = append(results, BatchResult{URL: u})
	}

	pool := utils.NewWorkerPool(a.opts.MaxConcurrency, a.opts.RateLimitMs)
	for i := range results {
		r := &results[i]
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				r.Err = err
				return
			}
			r.Analysis, r.Err = a.Analyze(ctx, r.URL)
			if r.Err != nil {
				a.logger.Error("[analyzer] %s: %v", r.URL, r.Err)
			}
		})
	}
	pool.Wait()

	return results
}

func scoreText(v *models.Valuation) string {
	if v == nil || v.Score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d/100", *v.Score)
}
