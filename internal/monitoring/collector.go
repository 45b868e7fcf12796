package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobbank-etl/internal/jobsync"
)

// Snapshot holds a point-in-time view of jobbank run health.
type Snapshot struct {
	// Runs started within the lookback window.
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsRunning  int     `json:"runs_running"`
	FailRate     float64 `json:"fail_rate"`
	RowsLoaded   int64   `json:"rows_loaded"`

	// LastSuccessAt is the completion time of the newest complete run,
	// regardless of the window.
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// RunLister abstracts the sync log query used by the collector.
type RunLister interface {
	List(ctx context.Context, limit int) ([]jobsync.SyncEntry, error)
}

// Collector builds snapshots from the run log.
type Collector struct {
	runs RunLister
	now  func() time.Time
}

// NewCollector creates a new collector.
func NewCollector(runs RunLister) *Collector {
	return &Collector{runs: runs, now: time.Now}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	now := c.now().UTC()
	snap := &Snapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	entries, err := c.runs.List(ctx, 0)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	// Entries arrive newest first.
	for _, e := range entries {
		if e.Status == jobsync.StatusComplete && snap.LastSuccessAt == nil && e.CompletedAt != nil {
			t := e.CompletedAt.UTC()
			snap.LastSuccessAt = &t
		}
		if e.StartedAt.Before(cutoff) {
			continue
		}
		snap.RunsTotal++
		switch e.Status {
		case jobsync.StatusComplete:
			snap.RunsComplete++
			snap.RowsLoaded += e.RowsLoaded
		case jobsync.StatusFailed:
			snap.RunsFailed++
			if snap.LastError == "" {
				snap.LastError = e.Error
			}
		case jobsync.StatusRunning:
			snap.RunsRunning++
		}
	}

	if finished := snap.RunsComplete + snap.RunsFailed; finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	return snap, nil
}
