package postgres

import (
	"context"
	"sync"

	"github.com/smartcity/calo/internal/domain"
)

const mockCapacity = 100

// MockRepository implements domain.AnalysisRepository in memory for
// demo mode. It keeps the most recent analyses only.
type MockRepository struct {
	mu      sync.Mutex
	records []domain.AnalysisRecord // oldest first
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveAnalysis keeps the record in memory
func (r *MockRepository) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	if len(r.records) > mockCapacity {
		r.records = append([]domain.AnalysisRecord(nil), r.records[len(r.records)-mockCapacity:]...)
	}
	return nil
}

// RecentAnalyses returns up to limit records, newest first
func (r *MockRepository) RecentAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.AnalysisRecord, 0, min(limit, len(r.records)))
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

// IsMock reports that nothing is persisted beyond the process
func (r *MockRepository) IsMock() bool {
	return true
}

var _ domain.AnalysisRepository = (*MockRepository)(nil)
