package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/brand-analyzer/internal/types"
)

const createReportsTable = `CREATE TABLE IF NOT EXISTS analysis_reports (
	id           UUID PRIMARY KEY,
	url          TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	analyzed_at  TIMESTAMPTZ NOT NULL,
	provider     TEXT NOT NULL DEFAULT '',
	model        TEXT NOT NULL DEFAULT '',
	report       JSONB NOT NULL,
	meta         JSONB NOT NULL
)`

// PostgresStore archives results in the analysis_reports table.
type PostgresStore struct {
	pool pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(p pool) *PostgresStore {
	return &PostgresStore{pool: p}
}

// EnsureSchema creates the reports table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createReportsTable); err != nil {
		return fmt.Errorf("failed to create analysis_reports table: %w", err)
	}
	return nil
}

// Save inserts or replaces a result.
func (s *PostgresStore) Save(ctx context.Context, result *types.AnalysisResult) error {
	id, err := uuid.Parse(result.Meta.ReportID)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", result.Meta.ReportID, err)
	}
	reportJSON, err := json.Marshal(result.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	metaJSON, err := json.Marshal(result.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_reports (id, url, company_name, analyzed_at, provider, model, report, meta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET report = $7, meta = $8`,
		id, result.Meta.URL, result.Meta.CompanyName, result.Meta.AnalyzedAt,
		result.Meta.Provider, result.Meta.Model, reportJSON, metaJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get loads a result by id. Unknown and malformed ids yield ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, id string) (*types.AnalysisResult, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var reportJSON, metaJSON []byte
	err = s.pool.QueryRow(ctx,
		`SELECT report, meta FROM analysis_reports WHERE id = $1`, parsed,
	).Scan(&reportJSON, &metaJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(reportJSON, &result.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	if err := json.Unmarshal(metaJSON, &result.Meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meta: %w", err)
	}
	return &result, nil
}

// Recent lists metadata of the newest results.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]types.AnalysisMeta, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT meta FROM analysis_reports ORDER BY analyzed_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var metas []types.AnalysisMeta
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan report meta: %w", err)
		}
		var meta types.AnalysisMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meta: %w", err)
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return metas, nil
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
