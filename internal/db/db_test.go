package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-analyzer/internal/types"
)

const testReportID = "6f1c1f1e-3b8e-4a53-9a43-1f8d2a0f7c11"

func sampleResult(id string, at time.Time) *types.AnalysisResult {
	return &types.AnalysisResult{
		Report: types.AnalysisReport{Company: types.CompanyProfile{Name: "Acme"}},
		Meta: types.AnalysisMeta{
			ReportID:    id,
			URL:         "https://acme.example",
			CompanyName: "Acme",
			AnalyzedAt:  at,
			Provider:    "openai",
			Model:       "kimi-k2-0711",
		},
	}
}

func TestMemoryStore_SaveGet(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleResult("a", time.Now())))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Report.Company.Name)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, sampleResult(id, base.Add(time.Duration(i)*time.Hour))))
	}

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	metas, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "c", metas[0].ReportID)
	assert.Equal(t, "b", metas[1].ReportID)
}

func TestMemoryStore_RecentLimit(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, sampleResult(id, base.Add(time.Duration(i)*time.Minute))))
	}

	metas, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "c", metas[0].ReportID)
}

func TestOpen_EmptyURLUsesMemory(t *testing.T) {
	store, err := Open(context.Background(), "", 5)
	require.NoError(t, err)
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS analysis_reports").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, NewPostgresStore(mock).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	result := sampleResult(testReportID, time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC))
	mock.ExpectExec("INSERT INTO analysis_reports").
		WithArgs(
			pgxmock.AnyArg(),
			"https://acme.example",
			"Acme",
			result.Meta.AnalyzedAt,
			"openai",
			"kimi-k2-0711",
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgresStore(mock).Save(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRejectsInvalidID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	err = NewPostgresStore(mock).Save(context.Background(), sampleResult("not-a-uuid", time.Now()))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	result := sampleResult(testReportID, time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC))
	reportJSON, err := json.Marshal(result.Report)
	require.NoError(t, err)
	metaJSON, err := json.Marshal(result.Meta)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT report, meta FROM analysis_reports").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"report", "meta"}).AddRow(reportJSON, metaJSON))

	got, err := NewPostgresStore(mock).Get(context.Background(), testReportID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Report.Company.Name)
	assert.Equal(t, testReportID, got.Meta.ReportID)
	assert.True(t, result.Meta.AnalyzedAt.Equal(got.Meta.AnalyzedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT report, meta FROM analysis_reports").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresStore(mock)
	_, err = store.Get(context.Background(), testReportID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT report, meta FROM analysis_reports").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresStore(mock).Get(context.Background(), testReportID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_Recent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer, err := json.Marshal(sampleResult("b", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)).Meta)
	require.NoError(t, err)
	older, err := json.Marshal(sampleResult("a", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)).Meta)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT meta FROM analysis_reports").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"meta"}).AddRow(newer).AddRow(older))

	metas, err := NewPostgresStore(mock).Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "b", metas[0].ReportID)
	assert.Equal(t, "a", metas[1].ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
