package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/jobbank-etl/internal/resilience"
)

// HTTPFetcher implements PageFetcher using net/http with per-host rate
// limiting and an unbounded fixed-delay retry.
type HTTPFetcher struct {
	client   *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()
	transport := &http.Transport{
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	if lim, ok := f.limiters[host]; ok {
		return lim
	}
	limit := rate.Inf
	if f.opts.RatePerSec > 0 {
		limit = rate.Limit(f.opts.RatePerSec)
	}
	lim := rate.NewLimiter(limit, 1)
	f.limiters[host] = lim
	return lim
}

// Fetch downloads and parses rawURL, retrying until it succeeds or ctx is done.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	page, err := resilience.DoVal(ctx, retryFor(f.opts, rawURL), func(ctx context.Context) (*Page, error) {
		return f.fetchOnce(ctx, rawURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: fetch %s", rawURL)
	}
	return page, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (*Page, error) {
	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http get")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		zap.L().Warn("fetcher: unexpected status, parsing body as-is",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
	}

	body, err := decodeBody(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "parse markup")
	}

	return &Page{URL: rawURL, StatusCode: resp.StatusCode, Doc: doc}, nil
}
