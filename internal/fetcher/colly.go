package fetcher

import (
	"bytes"
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobbank-etl/internal/resilience"
)

// CollyFetcher implements PageFetcher on a colly collector.
type CollyFetcher struct {
	base *colly.Collector
	opts Options
}

// NewCollyFetcher creates a CollyFetcher with the given options.
func NewCollyFetcher(opts Options) (*CollyFetcher, error) {
	opts = opts.withDefaults()

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(opts.Timeout)
	c.ParseHTTPErrorResponse = true
	if opts.RatePerSec > 0 {
		err := c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: 1,
			Delay:       time.Duration(float64(time.Second) / opts.RatePerSec),
		})
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: colly rate limit")
		}
	}

	return &CollyFetcher{base: c, opts: opts}, nil
}

// Fetch downloads and parses rawURL, retrying until it succeeds or ctx is done.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	page, err := resilience.DoVal(ctx, retryFor(f.opts, rawURL), func(_ context.Context) (*Page, error) {
		return f.visit(rawURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: colly fetch %s", rawURL)
	}
	return page, nil
}

func (f *CollyFetcher) visit(rawURL string) (*Page, error) {
	c := f.base.Clone()

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, eris.Wrap(err, "colly visit")
	}

	if resilience.IsTransientHTTPStatus(status) {
		return nil, resilience.NewTransientError(
			eris.Errorf("http %d from %s", status, rawURL), status)
	}
	if status != 200 {
		zap.L().Warn("fetcher: unexpected status, parsing body as-is",
			zap.String("url", rawURL),
			zap.Int("status", status),
		)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "parse markup")
	}
	return &Page{URL: rawURL, StatusCode: status, Doc: doc}, nil
}
