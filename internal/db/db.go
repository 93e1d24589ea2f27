// Package db archives analysis results, in memory or in PostgreSQL.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/brand-analyzer/internal/types"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("report not found")

// ReportStore archives analysis results by report id.
type ReportStore interface {
	Save(ctx context.Context, result *types.AnalysisResult) error
	Get(ctx context.Context, id string) (*types.AnalysisResult, error)
	Recent(ctx context.Context, limit int) ([]types.AnalysisMeta, error)
	Close()
}

// pool is the subset of *pgxpool.Pool the store uses; pgxmock satisfies it in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return p, nil
}

// Open returns a PostgreSQL store when databaseURL is set, otherwise an
// in-memory store holding at most memoryLimit results.
func Open(ctx context.Context, databaseURL string, memoryLimit int) (ReportStore, error) {
	if databaseURL == "" {
		return NewMemoryStore(memoryLimit), nil
	}
	p, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	store := NewPostgresStore(p)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
