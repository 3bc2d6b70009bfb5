package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no account exists for the requested identifier.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicate indicates an account with the same identifier already exists.
	ErrDuplicate = errors.New("account already exists")

	// ErrInvalid indicates the account data was rejected before reaching the store.
	ErrInvalid = errors.New("invalid account")
)

// Repository is the keyed account store shared by all requests. Implementations
// must be safe for concurrent use independently of the per-account guards.
type Repository interface {
	Create(ctx context.Context, account Account) error
	Get(ctx context.Context, id string) (Account, error)
	// Save writes the balances of all given accounts as one atomic step.
	Save(ctx context.Context, accounts ...Account) error
	// Clear removes every account. Intended for tests.
	Clear(ctx context.Context) error
}
