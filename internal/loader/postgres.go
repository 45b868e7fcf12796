package loader

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobbank-etl/internal/db"
	"github.com/sells-group/jobbank-etl/internal/model"
)

// PostgresLoader loads rows with the COPY protocol inside one transaction.
type PostgresLoader struct {
	pool  db.Pool
	opts  Options
	table pgx.Identifier
}

// NewPostgres creates a PostgresLoader. The pool is owned by the caller.
func NewPostgres(pool db.Pool, opts Options) *PostgresLoader {
	opts = opts.withDefaults()
	return &PostgresLoader{pool: pool, opts: opts, table: db.ParseIdentifier(opts.Table)}
}

// Load copies rows into the jobbank table.
func (l *PostgresLoader) Load(ctx context.Context, rows []model.NormalizedJobRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	values, err := copyRows(rows)
	if err != nil {
		return 0, err
	}

	log := zap.L().With(zap.String("component", "loader.postgres"), zap.String("table", l.table.Sanitize()))

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "loader: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if l.opts.ReplaceDate {
		for _, d := range distinctDates(rows) {
			tag, err := tx.Exec(ctx, "DELETE FROM "+l.table.Sanitize()+" WHERE date = $1", d)
			if err != nil {
				return 0, eris.Wrapf(err, "loader: delete rows for %s", d)
			}
			log.Info("replaced existing rows", zap.String("date", d), zap.Int64("deleted", tag.RowsAffected()))
		}
	}

	n, err := db.CopyBatches(ctx, tx, l.table, model.JobbankColumns, values, l.opts.BatchSize)
	if err != nil {
		return 0, eris.Wrap(err, "loader: copy rows")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "loader: commit")
	}

	log.Info("rows loaded", zap.Int64("rows", n))
	return n, nil
}

// Close is a no-op; the pool belongs to the caller.
func (l *PostgresLoader) Close() error { return nil }

// copyRows converts rows to COPY values, with the date column as a DATE.
func copyRows(rows []model.NormalizedJobRecord) ([][]any, error) {
	out := make([][]any, len(rows))
	for i, r := range rows {
		v := r.Values()
		d, err := time.Parse(time.DateOnly, r.Date)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: row %d date %q", i, r.Date)
		}
		v[0] = d
		out[i] = v
	}
	return out, nil
}
