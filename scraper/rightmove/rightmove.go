// Package rightmove fetches Rightmove listing pages and pulls the raw
// listing facts out of them.
package rightmove

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"propertyedge/models"
	"propertyedge/utils"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptLanguage = "en-GB,en;q=0.9"
)

var (
	// ErrNoPropertyID is returned for URLs without a /properties/{id} segment.
	ErrNoPropertyID = errors.New("rightmove: could not find property id in URL")
	// ErrNotFound is returned when the listing page is gone (404/410).
	ErrNotFound = errors.New("rightmove: listing not found")
)

var propertyIDRegexp = regexp.MustCompile(`/properties/(\d+)`)

// ParsePropertyID returns the listing id embedded in a Rightmove URL.
func ParsePropertyID(url string) (string, error) {
	m := propertyIDRegexp.FindStringSubmatch(url)
	if m == nil {
		return "", ErrNoPropertyID
	}
	return m[1], nil
}

// Fetcher returns the HTML of a listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Scraper fetches a listing page with retries and extracts its raw facts.
type Scraper struct {
	fetcher Fetcher
	retry   *utils.RetryConfig
	logger  *utils.Logger
	now     func() time.Time
}

// New creates a Scraper around fetcher.
func New(fetcher Fetcher, retry *utils.RetryConfig, logger *utils.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		retry:   retry,
		logger:  logger,
		now:     time.Now,
	}
}

// Scrape fetches url and returns the raw listing found on the page.
func (s *Scraper) Scrape(ctx context.Context, url string) (*models.RawListing, error) {
	id, err := ParsePropertyID(url)
	if err != nil {
		return nil, err
	}

	var html string
	err = s.retry.Do(ctx, "fetch-"+id, func(ctx context.Context) error {
		body, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		html = body
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rightmove: fetch %s: %w", id, err)
	}
	s.logger.Debug("[rightmove] Fetched property %s (%d bytes)", id, len(html))

	raw, err := Extract(html, url)
	if err != nil {
		return nil, err
	}
	raw.ScrapedAt = s.now().UTC()

	s.logger.Info("[rightmove] Extracted property %s: price=%q postcode=%q features=%d",
		id, raw.Price, raw.Postcode, len(raw.KeyFeatures))
	return raw, nil
}
