package beneficiary

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Beneficiary // keyed by ID
}

// NewMemoryRepository constructs an in-memory beneficiary store for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Beneficiary)}
}

func (r *memoryRepository) Save(_ context.Context, b Beneficiary) (Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range r.storage {
		if existing.OwnerID == b.OwnerID && existing.AccountNumber == b.AccountNumber && existing.BankCode == b.BankCode {
			existing.TransferCount++
			existing.LastUsed = now
			r.storage[id] = existing
			return existing, nil
		}
	}

	b.ID = uuid.NewString()
	b.TransferCount = 1
	b.CreatedAt = now
	b.LastUsed = now
	r.storage[b.ID] = b
	return b, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Beneficiary
	for _, b := range r.storage {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsed.After(out[j].LastUsed) })
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.storage[id]
	if !ok || b.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}

func (r *memoryRepository) UpdateNickname(_ context.Context, ownerID, id, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.storage[id]
	if !ok || b.OwnerID != ownerID {
		return ErrNotFound
	}
	b.Nickname = nickname
	r.storage[id] = b
	return nil
}
