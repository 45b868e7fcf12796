// Package loader bulk-loads normalized job rows into the jobbank table.
package loader

import (
	"context"

	"github.com/sells-group/jobbank-etl/internal/model"
)

// DefaultTable is the name of the jobbank table.
const DefaultTable = "jobbank"

// Loader writes a normalized table to storage.
type Loader interface {
	// Load inserts rows in order and returns how many were written.
	Load(ctx context.Context, rows []model.NormalizedJobRecord) (int64, error)
	Close() error
}

// Options configures a Loader.
type Options struct {
	Table     string
	BatchSize int
	// ReplaceDate deletes existing rows for the crawl dates being loaded.
	ReplaceDate bool
}

func (o Options) withDefaults() Options {
	if o.Table == "" {
		o.Table = DefaultTable
	}
	return o
}

// distinctDates returns the crawl dates present in rows in first-seen order.
func distinctDates(rows []model.NormalizedJobRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Date] {
			seen[r.Date] = true
			out = append(out, r.Date)
		}
	}
	return out
}
