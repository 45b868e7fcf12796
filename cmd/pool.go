package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sells-group/jobbank-etl/internal/db"
)

// postgresPool connects to cfg.Store.DatabaseURL.
func postgresPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	fmt.Println("Connected to database")
	return pool, nil
}
