package account

import (
	"context"
	"fmt"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Account
}

// NewMemoryRepository constructs the process-wide in-memory account store.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account Account) error {
	if account.guard == nil {
		account.guard = newGuard()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[account.ID]; exists {
		return fmt.Errorf("account id %s: %w", account.ID, ErrDuplicate)
	}
	r.storage[account.ID] = account
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.storage[id]
	if !ok {
		return Account{}, fmt.Errorf("account id %s: %w", id, ErrNotFound)
	}
	return account, nil
}

func (r *memoryRepository) Save(_ context.Context, accounts ...Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range accounts {
		if _, ok := r.storage[a.ID]; !ok {
			return fmt.Errorf("account id %s: %w", a.ID, ErrNotFound)
		}
	}
	for _, a := range accounts {
		stored := r.storage[a.ID]
		stored.Balance = a.Balance
		r.storage[a.ID] = stored
	}
	return nil
}

func (r *memoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = make(map[string]Account)
	return nil
}
