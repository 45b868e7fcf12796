package jobsync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobbank-etl/internal/db"
)

// Run statuses recorded in jobbank_sync_log.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// SyncEntry is a row of jobbank_sync_log.
type SyncEntry struct {
	ID          int64          `json:"id"`
	RunID       string         `json:"run_id"`
	StartURL    string         `json:"start_url"`
	Target      int            `json:"target"`
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	RowsLoaded  int64          `json:"rows_loaded"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SyncResult is passed to Complete.
type SyncResult struct {
	RowsLoaded int64          `json:"rows_loaded"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SyncLog reads and writes jobbank_sync_log.
type SyncLog struct {
	pool db.Pool
}

// NewSyncLog creates a SyncLog backed by pool.
func NewSyncLog(pool db.Pool) *SyncLog {
	return &SyncLog{pool: pool}
}

// Start records the beginning of a run and returns its row ID.
func (s *SyncLog) Start(ctx context.Context, runID, startURL string, target int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobbank_sync_log (run_id, start_url, target, status, started_at)
		 VALUES ($1, $2, $3, 'running', now()) RETURNING id`,
		runID, startURL, target,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "synclog: start run %s", runID)
	}
	return id, nil
}

// Complete marks a run as finished.
func (s *SyncLog) Complete(ctx context.Context, id int64, result *SyncResult) error {
	var metaJSON []byte
	var rows int64
	if result != nil {
		rows = result.RowsLoaded
		if result.Metadata != nil {
			var err error
			metaJSON, err = json.Marshal(result.Metadata)
			if err != nil {
				return eris.Wrap(err, "synclog: marshal metadata")
			}
		}
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE jobbank_sync_log
		 SET status = 'complete', completed_at = now(), rows_loaded = $1, metadata = $2
		 WHERE id = $3`,
		rows, metaJSON, id,
	)
	if err != nil {
		return eris.Wrapf(err, "synclog: complete run %d", id)
	}
	return nil
}

// Fail marks a run as failed.
func (s *SyncLog) Fail(ctx context.Context, id int64, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobbank_sync_log
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "synclog: fail run %d", id)
	}
	return nil
}

// List returns the most recent runs first. A limit <= 0 returns all runs.
func (s *SyncLog) List(ctx context.Context, limit int) ([]SyncEntry, error) {
	q := `SELECT id, run_id, start_url, target, status, started_at, completed_at, rows_loaded, error, metadata
		 FROM jobbank_sync_log ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "synclog: list runs")
	}
	defer rows.Close()

	var entries []SyncEntry
	for rows.Next() {
		var e SyncEntry
		var errStr *string
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.RunID, &e.StartURL, &e.Target, &e.Status, &e.StartedAt,
			&e.CompletedAt, &e.RowsLoaded, &errStr, &metaJSON); err != nil {
			return nil, eris.Wrap(err, "synclog: scan entry")
		}
		if errStr != nil {
			e.Error = *errStr
		}
		if metaJSON != nil {
			_ = json.Unmarshal(metaJSON, &e.Metadata)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
