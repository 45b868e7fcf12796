package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, pgx.Identifier{"jobbank"}, []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, []string{"a", "b"}).WillReturnResult(3)

	rows := [][]any{{1, "x"}, {2, "y"}, {3, "z"}}
	n, err := CopyFrom(context.Background(), mock, pgx.Identifier{"jobbank"}, []string{"a", "b"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"public", "jobbank"}, []string{"a"}).WillReturnError(fmt.Errorf("permission denied"))

	_, err = CopyFrom(context.Background(), mock, pgx.Identifier{"public", "jobbank"}, []string{"a"}, [][]any{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `COPY INTO "public"."jobbank"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyBatches_Splits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"a"}
	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, cols).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, cols).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, cols).WillReturnResult(1)

	rows := [][]any{{1}, {2}, {3}, {4}, {5}}
	n, err := CopyBatches(context.Background(), mock, pgx.Identifier{"jobbank"}, cols, rows, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyBatches_PartialFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"a"}
	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, cols).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, cols).WillReturnError(fmt.Errorf("disk full"))

	rows := [][]any{{1}, {2}, {3}}
	n, err := CopyBatches(context.Background(), mock, pgx.Identifier{"jobbank"}, cols, rows, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2-3")
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyBatches_DefaultBatchSize(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := make([][]any, DefaultBatchSize+1)
	for i := range rows {
		rows[i] = []any{i}
	}
	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, []string{"a"}).WillReturnResult(int64(DefaultBatchSize))
	mock.ExpectCopyFrom(pgx.Identifier{"jobbank"}, []string{"a"}).WillReturnResult(1)

	n, err := CopyBatches(context.Background(), mock, pgx.Identifier{"jobbank"}, []string{"a"}, rows, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultBatchSize+1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseIdentifier_Copy(t *testing.T) {
	assert.Equal(t, pgx.Identifier{"jobbank"}, ParseIdentifier("jobbank"))
	assert.Equal(t, pgx.Identifier{"etl", "jobbank"}, ParseIdentifier("etl.jobbank"))
}

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database_url")
}
