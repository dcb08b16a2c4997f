package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool は PostgreSQL 接続プールを生成する
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// OpenLeadRepository picks the lead store backend: PostgreSQL when
// databaseURL is set, otherwise the SQLite file at dbFile.
func OpenLeadRepository(ctx context.Context, databaseURL, dbFile string) (LeadRepository, error) {
	if databaseURL != "" {
		pool, err := NewPool(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPgLeadRepository(pool), nil
	}
	repo, err := OpenSQLiteLeadRepository(ctx, dbFile)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbFile, err)
	}
	return repo, nil
}
