package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/jobbank-etl/internal/model"
)

// SQLiteLoader writes rows to a local SQLite database file.
type SQLiteLoader struct {
	db   *sql.DB
	opts Options
}

// NewSQLite opens the database at dsn and creates the jobbank table if needed.
func NewSQLite(ctx context.Context, dsn string, opts Options) (*SQLiteLoader, error) {
	opts = opts.withDefaults()
	if strings.ContainsAny(opts.Table, `."`) {
		return nil, eris.Errorf("loader: invalid sqlite table name %q", opts.Table)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "loader: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "loader: exec %s", pragma)
		}
	}

	l := &SQLiteLoader{db: db, opts: opts}
	if _, err := db.ExecContext(ctx, l.createSQL()); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "loader: create sqlite table")
	}
	return l, nil
}

func (l *SQLiteLoader) createSQL() string {
	cols := make([]string, len(model.JobbankColumns))
	for i, c := range model.JobbankColumns {
		cols[i] = fmt.Sprintf("\t%q TEXT NOT NULL", c)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (\n%s\n);\nCREATE INDEX IF NOT EXISTS %q ON %q(date);",
		l.opts.Table, strings.Join(cols, ",\n"), "idx_"+l.opts.Table+"_date", l.opts.Table)
}

// Load inserts rows in one transaction with a prepared statement.
func (l *SQLiteLoader) Load(ctx context.Context, rows []model.NormalizedJobRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "loader: begin sqlite tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if l.opts.ReplaceDate {
		for _, d := range distinctDates(rows) {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q WHERE date = ?", l.opts.Table), d); err != nil {
				return 0, eris.Wrapf(err, "loader: delete sqlite rows for %s", d)
			}
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(model.JobbankColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		l.opts.Table, strings.Join(model.JobbankColumns, ", "), placeholders))
	if err != nil {
		return 0, eris.Wrap(err, "loader: prepare sqlite insert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Values()...); err != nil {
			return n, eris.Wrapf(err, "loader: insert sqlite row %d", i)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "loader: commit sqlite tx")
	}
	zap.L().Info("rows loaded", zap.String("component", "loader.sqlite"), zap.Int64("rows", n))
	return n, nil
}

// Close closes the database.
func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}
