package statement

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps statement records in memory for tests and
// local development.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, ownerID, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.OwnerID == ownerID && rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrRecordNotFound
}
