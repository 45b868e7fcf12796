package jobsync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobbank-etl/internal/crawl"
	"github.com/sells-group/jobbank-etl/internal/export"
	"github.com/sells-group/jobbank-etl/internal/loader"
	"github.com/sells-group/jobbank-etl/internal/model"
	"github.com/sells-group/jobbank-etl/internal/normalize"
)

// Crawler collects raw records from a listing.
type Crawler interface {
	Crawl(ctx context.Context, startURL string, target int) (model.RawRecordSet, crawl.Stats, error)
}

// RunLog records run lifecycle events. *SyncLog implements it.
type RunLog interface {
	Start(ctx context.Context, runID, startURL string, target int) (int64, error)
	Complete(ctx context.Context, id int64, result *SyncResult) error
	Fail(ctx context.Context, id int64, errMsg string) error
}

// RunOpts configures one pipeline run.
type RunOpts struct {
	StartURL string
	Target   int  // accepted records to collect; <= 0 crawls every page
	DryRun   bool // skip the loader
	CSVPath  string
	XLSXPath string
}

// Result summarizes one pipeline run.
type Result struct {
	RunID      string          `json:"run_id"`
	Crawl      crawl.Stats     `json:"crawl"`
	Normalize  normalize.Stats `json:"normalize"`
	RowsLoaded int64           `json:"rows_loaded"`
	Elapsed    time.Duration   `json:"elapsed"`
}

// Engine runs crawl, normalize, and load in sequence.
type Engine struct {
	crawler Crawler
	loader  loader.Loader
	runLog  RunLog
	now     func() time.Time
}

// NewEngine creates an Engine. The loader may be nil for dry runs and the
// run log may be nil when runs are not recorded.
func NewEngine(c Crawler, l loader.Loader, runLog RunLog) *Engine {
	return &Engine{crawler: c, loader: l, runLog: runLog, now: time.Now}
}

// Run executes the pipeline once. A crawl error aborts the run before
// anything is written.
func (e *Engine) Run(ctx context.Context, opts RunOpts) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("component", "jobsync.engine"), zap.String("run_id", res.RunID))

	if !opts.DryRun && e.loader == nil {
		return nil, eris.New("jobsync: no loader configured")
	}

	var syncID int64
	if e.runLog != nil {
		id, err := e.runLog.Start(ctx, res.RunID, opts.StartURL, opts.Target)
		if err != nil {
			return nil, eris.Wrap(err, "jobsync: start run log")
		}
		syncID = id
	}

	start := e.now()
	log.Info("run started", zap.String("start_url", opts.StartURL), zap.Int("target", opts.Target), zap.Bool("dry_run", opts.DryRun))

	if err := e.run(ctx, opts, res, log); err != nil {
		log.Error("run failed", zap.Error(err))
		if e.runLog != nil {
			if logErr := e.runLog.Fail(context.WithoutCancel(ctx), syncID, err.Error()); logErr != nil {
				log.Error("failed to record run failure", zap.Error(logErr))
			}
		}
		return res, err
	}
	res.Elapsed = e.now().Sub(start)

	if e.runLog != nil {
		if err := e.runLog.Complete(ctx, syncID, &SyncResult{RowsLoaded: res.RowsLoaded, Metadata: res.metadata()}); err != nil {
			log.Error("failed to record run completion", zap.Error(err))
		}
	}

	log.Info("run complete",
		zap.Int("pages", res.Crawl.PagesFetched),
		zap.Int("accepted", res.Crawl.RecordsAccepted),
		zap.Int("rows_dropped", res.Normalize.RowsDropped),
		zap.Int64("rows_loaded", res.RowsLoaded),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, opts RunOpts, res *Result, log *zap.Logger) error {
	records, cstats, err := e.crawler.Crawl(ctx, opts.StartURL, opts.Target)
	res.Crawl = cstats
	if err != nil {
		return eris.Wrap(err, "jobsync: crawl")
	}

	rows, nstats := normalize.Normalize(records, e.now())
	res.Normalize = nstats
	log.Info("records normalized",
		zap.Int("rows_in", nstats.RowsIn),
		zap.Int("rows_out", nstats.RowsOut),
		zap.Int("rows_dropped", nstats.RowsDropped),
	)

	if opts.CSVPath != "" {
		if err := export.WriteCSVFile(opts.CSVPath, rows); err != nil {
			return err
		}
		log.Info("csv written", zap.String("path", opts.CSVPath))
	}
	if opts.XLSXPath != "" {
		if err := export.WriteXLSX(opts.XLSXPath, rows); err != nil {
			return err
		}
		log.Info("xlsx written", zap.String("path", opts.XLSXPath))
	}

	if opts.DryRun {
		log.Info("dry run, skipping load", zap.Int("rows", len(rows)))
		return nil
	}

	n, err := e.loader.Load(ctx, rows)
	res.RowsLoaded = n
	if err != nil {
		return eris.Wrap(err, "jobsync: load")
	}
	return nil
}

func (r *Result) metadata() map[string]any {
	payTypes := make(map[string]int, len(r.Normalize.PayTypes))
	for k, v := range r.Normalize.PayTypes {
		payTypes[string(k)] = v
	}
	return map[string]any{
		"pages_fetched":    r.Crawl.PagesFetched,
		"entries_seen":     r.Crawl.EntriesSeen,
		"records_accepted": r.Crawl.RecordsAccepted,
		"records_skipped":  r.Crawl.RecordsSkipped,
		"rows_dropped":     r.Normalize.RowsDropped,
		"pay_types":        payTypes,
	}
}
