package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Service exposes account creation and lookup on top of the store.
type Service struct {
	repo Repository
}

// NewService builds an account service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to open an account.
type CreateInput struct {
	ID      string
	Balance decimal.Decimal
}

// Create opens an account with the given opening balance.
func (s *Service) Create(ctx context.Context, input CreateInput) (Account, error) {
	if strings.TrimSpace(input.ID) == "" {
		return Account{}, fmt.Errorf("%w: account id is required", ErrInvalid)
	}
	if input.Balance.IsNegative() {
		return Account{}, fmt.Errorf("%w: initial balance must not be negative", ErrInvalid)
	}

	account := New(input.ID, input.Balance)
	if err := s.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// Get retrieves an account snapshot.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.Get(ctx, id)
}
