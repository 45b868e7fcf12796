package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobbank-etl/internal/config"
	"github.com/sells-group/jobbank-etl/internal/crawl"
	"github.com/sells-group/jobbank-etl/internal/fetcher"
	"github.com/sells-group/jobbank-etl/internal/jobsync"
	"github.com/sells-group/jobbank-etl/internal/loader"
	"github.com/sells-group/jobbank-etl/internal/model"
	"github.com/sells-group/jobbank-etl/internal/normalize"
)

func newFlaggedCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().IntVar(&runTarget, "target", 0, "")
	cmd.Flags().StringVar(&runStartURL, "start-url", "", "")
	cmd.Flags().StringVar(&runTransport, "transport", "", "")
	require.NoError(t, cmd.Flags().Parse(args))
	t.Cleanup(func() { runTarget, runStartURL, runTransport = 0, "", "" })
	return cmd
}

func TestApplyRunFlags_Overrides(t *testing.T) {
	c := &config.Config{Crawl: config.CrawlConfig{TargetCount: 100, StartURL: "a", Transport: "http"}}
	cmd := newFlaggedCmd(t, "--target", "0", "--start-url", "b", "--transport", "colly")

	applyRunFlags(cmd, c)
	assert.Equal(t, 0, c.Crawl.TargetCount)
	assert.Equal(t, "b", c.Crawl.StartURL)
	assert.Equal(t, "colly", c.Crawl.Transport)
}

func TestApplyRunFlags_KeepsConfig(t *testing.T) {
	c := &config.Config{Crawl: config.CrawlConfig{TargetCount: 100, StartURL: "a", Transport: "http"}}
	cmd := newFlaggedCmd(t)

	applyRunFlags(cmd, c)
	assert.Equal(t, 100, c.Crawl.TargetCount)
	assert.Equal(t, "a", c.Crawl.StartURL)
	assert.Equal(t, "http", c.Crawl.Transport)
}

func TestBuildProfile(t *testing.T) {
	p, err := buildProfile(config.CrawlConfig{PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, "50", p.PageSize)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size_param: size\n"), 0o644))
	p, err = buildProfile(config.CrawlConfig{ProfilePath: path})
	require.NoError(t, err)
	assert.Equal(t, "size", p.PageSizeParam)
	assert.Equal(t, "100", p.PageSize)

	_, err = buildProfile(config.CrawlConfig{ProfilePath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestBuildProfile_PageSizePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: \"50\"\n"), 0o644))

	p, err := buildProfile(config.CrawlConfig{ProfilePath: path})
	require.NoError(t, err)
	assert.Equal(t, "50", p.PageSize)

	p, err = buildProfile(config.CrawlConfig{ProfilePath: path, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, "20", p.PageSize)
}

func TestBuildFetcher(t *testing.T) {
	f, err := buildFetcher(config.CrawlConfig{Transport: "http", RetryDelaySecs: 5})
	require.NoError(t, err)
	assert.IsType(t, &fetcher.HTTPFetcher{}, f)

	f, err = buildFetcher(config.CrawlConfig{Transport: "colly"})
	require.NoError(t, err)
	assert.IsType(t, &fetcher.CollyFetcher{}, f)

	_, err = buildFetcher(config.CrawlConfig{Transport: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
}

func TestBuildLoader_SQLite(t *testing.T) {
	c := &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "jobbank.db")},
		Load:  config.LoadConfig{Table: "jobbank"},
	}
	l, runLog, closeFn, err := buildLoader(context.Background(), c)
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &loader.SQLiteLoader{}, l)
	assert.Nil(t, runLog)
}

func TestFormatRunResult(t *testing.T) {
	res := &jobsync.Result{
		RunID: "run-1",
		Crawl: crawl.Stats{PagesFetched: 3, RecordsAccepted: 250, RecordsSkipped: 4},
		Normalize: normalize.Stats{RowsIn: 250, RowsOut: 247, RowsDropped: 3, PayTypes: map[model.PayType]int{
			model.PayMonthly:    200,
			model.PayNegotiable: 47,
		}},
		RowsLoaded: 247,
		Elapsed:    1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	formatRunResult(&buf, res, false)
	out := buf.String()
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "pages fetched:    3")
	assert.Contains(t, out, "records accepted: 250 (skipped 4)")
	assert.Contains(t, out, "rows normalized:  247 (dropped 3)")
	assert.Contains(t, out, "rows loaded:      247")
	assert.Contains(t, out, "1.5s")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("negotiable")), bytes.Index(buf.Bytes(), []byte("monthly")))
	assert.Contains(t, out, "negotiable 47")
	assert.NotContains(t, out, "year")

	buf.Reset()
	formatRunResult(&buf, res, true)
	assert.Contains(t, buf.String(), "(dry run)")
}
