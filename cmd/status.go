package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jobbank-etl/internal/jobsync"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show jobbank run history",
	Long:  "Displays recent pipeline runs recorded in jobbank_sync_log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("status"); err != nil {
			return err
		}

		pool, err := postgresPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		entries, err := jobsync.NewSyncLog(pool).List(ctx, statusLimit)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(entries) == 0 {
			zap.L().Info("no runs found, run 'jobbank run' to start one")
			return nil
		}

		formatStatusEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "number of runs to show (0 = all)")
	rootCmd.AddCommand(statusCmd)
}

// formatStatusEntries writes a tabular representation of runs to out.
func formatStatusEntries(out io.Writer, entries []jobsync.SyncEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tRUN\tSTATUS\tSTARTED\tDURATION\tTARGET\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "--\t---\t------\t-------\t--------\t------\t----\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(time.Second).String()
		}

		target := "all"
		if e.Target > 0 {
			target = fmt.Sprintf("%d", e.Target)
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID,
			shortID(e.RunID),
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			target,
			e.RowsLoaded,
			truncate(e.Error, 60),
		)
	}
	_ = w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
