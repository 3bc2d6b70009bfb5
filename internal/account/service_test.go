package account

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCreateAndGet(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{ID: "Id-123", Balance: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	assert.Equal(t, "Id-123", created.ID)

	fetched, err := svc.Get(ctx, "Id-123")
	require.NoError(t, err)
	assert.True(t, fetched.Balance.Equal(decimal.NewFromInt(1000)))
	assert.NotNil(t, fetched.Guard())
}

func TestServiceCreateDuplicateKeepsOriginal(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{ID: "Id-123", Balance: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{ID: "Id-123", Balance: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "Id-123")

	fetched, err := svc.Get(ctx, "Id-123")
	require.NoError(t, err)
	assert.True(t, fetched.Balance.Equal(decimal.NewFromInt(1000)), "balance changed to %s", fetched.Balance)
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	cases := map[string]CreateInput{
		"empty id":         {ID: "", Balance: decimal.Zero},
		"blank id":         {ID: "   ", Balance: decimal.Zero},
		"negative balance": {ID: "Id-1", Balance: decimal.NewFromInt(-1)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, input)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := svc.Get(ctx, "Id-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceCreateAllowsZeroBalance(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	a, err := svc.Create(context.Background(), CreateInput{ID: "empty", Balance: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())
}

func TestAccountDepositWithdraw(t *testing.T) {
	a := New("Id-1", decimal.RequireFromString("10.10"))

	assert.Equal(t, "30.3", a.Deposit(decimal.RequireFromString("20.20")).String())
	assert.Equal(t, "0.3", a.Withdraw(decimal.NewFromInt(30)).String())
	// Withdraw does not check sufficiency.
	assert.Equal(t, "-0.7", a.Withdraw(decimal.NewFromInt(1)).String())
}

func TestAccountEqualIgnoresGuard(t *testing.T) {
	a := New("Id-1", decimal.RequireFromString("1.0"))
	b := New("Id-1", decimal.RequireFromString("1.00"))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(New("Id-2", decimal.RequireFromString("1"))))
}
