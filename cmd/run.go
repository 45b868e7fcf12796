package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jobbank-etl/internal/config"
	"github.com/sells-group/jobbank-etl/internal/crawl"
	"github.com/sells-group/jobbank-etl/internal/extract"
	"github.com/sells-group/jobbank-etl/internal/fetcher"
	"github.com/sells-group/jobbank-etl/internal/jobsync"
	"github.com/sells-group/jobbank-etl/internal/loader"
	"github.com/sells-group/jobbank-etl/internal/model"
	"github.com/sells-group/jobbank-etl/internal/resilience"
)

var (
	runTarget    int
	runStartURL  string
	runDryRun    bool
	runCSVPath   string
	runXLSXPath  string
	runTransport string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl, normalize, and load job listings",
	Long:  "Crawls the listing from the start URL until the target count is reached or no next page remains, normalizes the records, and loads them into the jobbank table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd, cfg)

		mode := "run"
		if runDryRun {
			mode = "dry-run"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		profile, err := buildProfile(cfg.Crawl)
		if err != nil {
			return err
		}
		f, err := buildFetcher(cfg.Crawl)
		if err != nil {
			return err
		}
		controller := crawl.NewController(f, extract.New(profile))

		var (
			l      loader.Loader
			runLog jobsync.RunLog
		)
		if !runDryRun {
			var closeFn func()
			l, runLog, closeFn, err = buildLoader(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()
		}

		res, err := jobsync.NewEngine(controller, l, runLog).Run(ctx, jobsync.RunOpts{
			StartURL: cfg.Crawl.StartURL,
			Target:   cfg.Crawl.TargetCount,
			DryRun:   runDryRun,
			CSVPath:  runCSVPath,
			XLSXPath: runXLSXPath,
		})
		if err != nil {
			return eris.Wrap(err, "run")
		}

		formatRunResult(os.Stdout, res, runDryRun)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runTarget, "target", 0, "accepted records to collect (0 = every page)")
	runCmd.Flags().StringVar(&runStartURL, "start-url", "", "first listing page (overrides crawl.start_url)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "crawl and normalize without loading")
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "also write the normalized table to this CSV file")
	runCmd.Flags().StringVar(&runXLSXPath, "xlsx", "", "also write the normalized table to this XLSX file")
	runCmd.Flags().StringVar(&runTransport, "transport", "", "page transport: http or colly (overrides crawl.transport)")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("target") {
		c.Crawl.TargetCount = runTarget
	}
	if runStartURL != "" {
		c.Crawl.StartURL = runStartURL
	}
	if runTransport != "" {
		c.Crawl.Transport = runTransport
	}
}

// buildProfile loads the selector profile. A positive crawl.page_size
// overrides the profile's page size.
func buildProfile(c config.CrawlConfig) (*extract.Profile, error) {
	profile := extract.DefaultProfile()
	if c.ProfilePath != "" {
		p, err := extract.LoadProfile(c.ProfilePath)
		if err != nil {
			return nil, err
		}
		profile = p
	}
	if c.PageSize > 0 {
		profile.PageSize = strconv.Itoa(c.PageSize)
	}
	return profile, nil
}

func buildFetcher(c config.CrawlConfig) (fetcher.PageFetcher, error) {
	opts := fetcher.Options{
		UserAgent:  c.UserAgent,
		Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
		RatePerSec: c.RateLimit,
		Retry:      resilience.FromDelaySecs(c.RetryDelaySecs, fetcher.DefaultRetryDelay),
	}

	switch c.Transport {
	case "", "http":
		return fetcher.NewHTTPFetcher(opts), nil
	case "colly":
		f, err := fetcher.NewCollyFetcher(opts)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, eris.Errorf("run: unknown transport %q", c.Transport)
	}
}

// buildLoader opens the configured store. The returned func releases it.
func buildLoader(ctx context.Context, c *config.Config) (loader.Loader, jobsync.RunLog, func(), error) {
	opts := loader.Options{
		Table:       c.Load.Table,
		BatchSize:   c.Load.BatchSize,
		ReplaceDate: c.Load.ReplaceDate,
	}

	switch c.Store.Driver {
	case "sqlite":
		l, err := loader.NewSQLite(ctx, c.Store.DatabaseURL, opts)
		if err != nil {
			return nil, nil, nil, err
		}
		return l, nil, func() { _ = l.Close() }, nil
	default:
		pool, err := postgresPool(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		return loader.NewPostgres(pool, opts), jobsync.NewSyncLog(pool), pool.Close, nil
	}
}

// formatRunResult writes a short run summary to out.
func formatRunResult(out io.Writer, res *jobsync.Result, dryRun bool) {
	_, _ = fmt.Fprintf(out, "Run %s\n", res.RunID)
	_, _ = fmt.Fprintf(out, "  pages fetched:    %d\n", res.Crawl.PagesFetched)
	_, _ = fmt.Fprintf(out, "  records accepted: %d (skipped %d)\n", res.Crawl.RecordsAccepted, res.Crawl.RecordsSkipped)
	_, _ = fmt.Fprintf(out, "  rows normalized:  %d (dropped %d)\n", res.Normalize.RowsOut, res.Normalize.RowsDropped)

	for _, pt := range model.AllPayTypes() {
		if n := res.Normalize.PayTypes[pt]; n > 0 {
			_, _ = fmt.Fprintf(out, "    %-10s %d\n", pt, n)
		}
	}

	if dryRun {
		_, _ = fmt.Fprintln(out, "  rows loaded:      - (dry run)")
	} else {
		_, _ = fmt.Fprintf(out, "  rows loaded:      %d\n", res.RowsLoaded)
	}
	_, _ = fmt.Fprintf(out, "  elapsed:          %s\n", res.Elapsed.Round(time.Millisecond))
}
