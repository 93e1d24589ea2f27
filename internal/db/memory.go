package db

import (
	"context"
	"sort"
	"sync"

	"github.com/jonathan/brand-analyzer/internal/types"
)

// DefaultMemoryLimit bounds the in-memory archive.
const DefaultMemoryLimit = 200

// MemoryStore keeps the most recent results in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	results map[string]*types.AnalysisResult
	order   []string
}

// NewMemoryStore creates an in-memory store. A non-positive limit selects DefaultMemoryLimit.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStore{limit: limit, results: make(map[string]*types.AnalysisResult)}
}

// Save stores a copy of result, evicting the oldest entry when full.
func (s *MemoryStore) Save(_ context.Context, result *types.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := result.Meta.ReportID
	if _, exists := s.results[id]; !exists {
		s.order = append(s.order, id)
	}
	stored := *result
	s.results[id] = &stored

	for len(s.order) > s.limit {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// Get returns the result with id or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (*types.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *result
	return &out, nil
}

// Recent returns up to limit metadata entries, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]types.AnalysisMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]types.AnalysisMeta, 0, len(s.results))
	for _, r := range s.results {
		metas = append(metas, r.Meta)
	}
	sort.SliceStable(metas, func(i, j int) bool { return metas[i].AnalyzedAt.After(metas[j].AnalyzedAt) })
	if limit > 0 && len(metas) > limit {
		metas = metas[:limit]
	}
	return metas, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() {}
