package wallet

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet // keyed by owner ID
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, wallet Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[wallet.OwnerID]; exists {
		return ErrAlreadyExists
	}
	for _, w := range r.storage {
		if w.AccountNumber == wallet.AccountNumber {
			return ErrAlreadyExists
		}
	}
	r.storage[wallet.OwnerID] = wallet
	return nil
}

func (r *memoryRepository) GetByOwner(_ context.Context, ownerID string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.storage[ownerID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}

func (r *memoryRepository) FindByAccountNumber(_ context.Context, accountNumber string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.storage {
		if w.AccountNumber == accountNumber {
			return w, nil
		}
	}
	return Wallet{}, ErrNotFound
}
