package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"propertyedge/models"
)

// MemoryStore is an in-process AnalysisStore. Stored analyses are deep
// copies, so callers can keep mutating what they saved.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64][]byte
	order  []int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, rows: make(map[int64][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, a *models.Analysis) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	row := *a
	row.ID = id
	raw, err := json.Marshal(&row)
	if err != nil {
		return 0, fmt.Errorf("memory: encode analysis: %w", err)
	}

	m.nextID++
	m.rows[id] = raw
	m.order = append(m.order, id)
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*models.Analysis, error) {
	m.mu.RLock()
	raw, ok := m.rows[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var a models.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("memory: decode analysis %d: %w", id, err)
	}
	return &a, nil
}

// List returns summaries newest first.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]models.AnalysisSummary, error) {
	m.mu.RLock()
	ids := make([]int64, len(m.order))
	copy(ids, m.order)
	m.mu.RUnlock()

	out := make([]models.AnalysisSummary, 0, min(len(ids), max(limit, 0)))
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		a, err := m.Get(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		out = append(out, Summarize(a))
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

// Summarize extracts the dashboard row from a full analysis.
func Summarize(a *models.Analysis) models.AnalysisSummary {
	s := models.AnalysisSummary{
		ID:         a.ID,
		CreatedAt:  a.CreatedAt,
		URL:        a.URL,
		PropertyID: a.PropertyID,
	}
	if a.Valuation != nil {
		s.Score = a.Valuation.Score
		s.Label = a.Valuation.Label
		s.FairValueMid = a.Valuation.FairValueMid
	}
	return s
}
