package rightmove

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"propertyedge/utils"
)

// HTTPFetcher downloads listing pages with a plain HTTP client.
type HTTPFetcher struct {
	collector *colly.Collector
}

// NewHTTPFetcher creates a fetcher whose requests give up after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	return &HTTPFetcher{collector: c}
}

// Fetch returns the page body. A 404 or 410 yields ErrNotFound marked
// permanent so it is not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Clone keeps the transport and options but none of the callbacks.
	c := f.collector.Clone()
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", acceptLanguage)
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		switch r.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			fetchErr = utils.Permanent(fmt.Errorf("%w: %s", ErrNotFound, url))
		default:
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
		}
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", errors.New("empty response body")
	}
	return string(body), nil
}
