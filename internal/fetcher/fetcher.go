// Package fetcher retrieves listing pages as parsed markup documents.
package fetcher

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/jobbank-etl/internal/resilience"
)

// DefaultUserAgent is sent on every page request.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.131 Safari/537.36"

// DefaultRetryDelay is the fixed wait between failed fetch attempts.
const DefaultRetryDelay = 60 * time.Second

// Page is one fetched and parsed listing page.
type Page struct {
	URL        string
	StatusCode int
	Doc        *goquery.Document
}

// PageFetcher retrieves a single page. Implementations retry transport
// failures until they succeed; Fetch only fails when ctx is done.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Options configures a PageFetcher.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	RatePerSec float64 // 0 = unlimited
	Retry      resilience.RetryConfig
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if !o.Retry.Unbounded && o.Retry.MaxAttempts == 0 {
		o.Retry = resilience.Forever(DefaultRetryDelay)
	}
	return o
}

func retryFor(o Options, rawURL string) resilience.RetryConfig {
	cfg := o.Retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("fetch", rawURL)
	}
	return cfg
}
