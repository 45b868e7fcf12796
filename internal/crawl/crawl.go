// Package crawl walks a paginated job listing and accumulates raw records.
package crawl

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobbank-etl/internal/extract"
	"github.com/sells-group/jobbank-etl/internal/fetcher"
	"github.com/sells-group/jobbank-etl/internal/model"
)

// progressEvery is the accepted-record interval between progress log lines.
const progressEvery = 2000

// Extractor turns one fetched page into records and a next-page link.
type Extractor interface {
	Extract(page *fetcher.Page) extract.Result
}

// Stats summarizes a crawl.
type Stats struct {
	PagesFetched    int            `json:"pages_fetched"`
	EntriesSeen     int            `json:"entries_seen"`
	RecordsAccepted int            `json:"records_accepted"`
	RecordsSkipped  int            `json:"records_skipped"`
	FieldMisses     map[string]int `json:"field_misses,omitempty"`
}

// Controller drives a fetcher and an extractor across listing pages.
type Controller struct {
	fetcher   fetcher.PageFetcher
	extractor Extractor
}

// NewController creates a Controller.
func NewController(f fetcher.PageFetcher, e Extractor) *Controller {
	return &Controller{fetcher: f, extractor: e}
}

// Crawl fetches pages starting at startURL and returns the accepted records
// in page order. With target > 0 it returns as soon as target records are
// accepted, even mid-page. With target <= 0 it follows next-page links until
// none remain. On error the records gathered so far are returned with it.
func (c *Controller) Crawl(ctx context.Context, startURL string, target int) (model.RawRecordSet, Stats, error) {
	log := zap.L().With(zap.String("component", "crawl"))

	var (
		records   model.RawRecordSet
		stats     Stats
		seen      extract.Stats
		remaining = target
		visited   = make(map[string]bool)
	)

	next := startURL
	for next != "" {
		if err := ctx.Err(); err != nil {
			return records, stats, eris.Wrap(err, "crawl: cancelled")
		}
		if visited[next] {
			log.Warn("next-page link loops back, stopping", zap.String("url", next))
			break
		}
		visited[next] = true

		page, err := c.fetcher.Fetch(ctx, next)
		if err != nil {
			return records, stats, eris.Wrapf(err, "crawl: fetch %s", next)
		}
		stats.PagesFetched++

		res := c.extractor.Extract(page)
		seen.Add(res.Stats)
		stats.EntriesSeen = seen.Entries
		stats.RecordsSkipped = seen.Skipped
		stats.FieldMisses = seen.FieldMisses

		for _, rec := range res.Records {
			records = append(records, rec)
			stats.RecordsAccepted++
			remaining--

			if stats.RecordsAccepted%progressEvery == 0 {
				log.Debug("crawl progress", zap.Int("accepted", stats.RecordsAccepted))
			}
			if target > 0 && remaining == 0 {
				log.Info("target reached",
					zap.Int("target", target),
					zap.Int("pages", stats.PagesFetched),
				)
				return records, stats, nil
			}
		}

		log.Info("page crawled",
			zap.Int("page", stats.PagesFetched),
			zap.Int("page_records", len(res.Records)),
			zap.Int("accepted", stats.RecordsAccepted),
		)
		next = res.NextURL
	}

	log.Info("crawl complete",
		zap.Int("pages", stats.PagesFetched),
		zap.Int("accepted", stats.RecordsAccepted),
		zap.Int("skipped", stats.RecordsSkipped),
	)
	return records, stats, nil
}
