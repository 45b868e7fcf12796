package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jobbank-etl/internal/jobsync"
	"github.com/sells-group/jobbank-etl/internal/monitoring"
)

var healthWatch bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check jobbank run health",
	Long:  "Summarizes recent runs from jobbank_sync_log and raises alerts for failures or stale data.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("health"); err != nil {
			return err
		}

		pool, err := postgresPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		checker := monitoring.NewChecker(
			monitoring.NewCollector(jobsync.NewSyncLog(pool)),
			monitoring.NewAlerter(cfg.Monitoring),
			cfg.Monitoring,
		)

		if healthWatch {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			checker.Run(ctx)
			return nil
		}

		snap, alerts, err := checker.Check(ctx)
		if err != nil {
			return eris.Wrap(err, "health")
		}
		formatHealth(os.Stdout, snap, alerts)
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthWatch, "watch", false, "keep checking every monitoring.check_interval_secs")
	rootCmd.AddCommand(healthCmd)
}

func formatHealth(out io.Writer, snap *monitoring.Snapshot, alerts []monitoring.Alert) {
	lastSuccess := "never"
	if snap.LastSuccessAt != nil {
		lastSuccess = snap.LastSuccessAt.Format(time.RFC3339)
	}

	_, _ = fmt.Fprintf(out, "Runs (last %dh): %d total, %d complete, %d failed, %d running\n",
		snap.LookbackHours, snap.RunsTotal, snap.RunsComplete, snap.RunsFailed, snap.RunsRunning)
	_, _ = fmt.Fprintf(out, "Failure rate: %.1f%%\n", snap.FailRate*100)
	_, _ = fmt.Fprintf(out, "Rows loaded: %d\n", snap.RowsLoaded)
	_, _ = fmt.Fprintf(out, "Last success: %s\n", lastSuccess)

	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(out, "No alerts")
		return
	}
	for _, a := range alerts {
		_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", a.Severity, a.Type, a.Message)
	}
}
