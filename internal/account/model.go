package account

import "github.com/shopspring/decimal"

// Account is a ledger entity holding an exact decimal balance. Values handed
// out by a Repository are snapshots; they share the stored account's guard.
type Account struct {
	ID      string
	Balance decimal.Decimal

	guard *Guard
}

// New builds an account with the supplied opening balance.
func New(id string, balance decimal.Decimal) Account {
	return Account{ID: id, Balance: balance, guard: newGuard()}
}

// Guard returns the account's exclusive-access guard.
func (a Account) Guard() *Guard {
	return a.guard
}

// Deposit adds amount to the balance and returns the new balance. The caller
// must hold the account's guard.
func (a *Account) Deposit(amount decimal.Decimal) decimal.Decimal {
	a.Balance = a.Balance.Add(amount)
	return a.Balance
}

// Withdraw subtracts amount from the balance and returns the new balance. It
// does not check sufficiency. The caller must hold the account's guard.
func (a *Account) Withdraw(amount decimal.Decimal) decimal.Decimal {
	a.Balance = a.Balance.Sub(amount)
	return a.Balance
}

// Equal compares identity and balance, ignoring the guard.
func (a Account) Equal(other Account) bool {
	return a.ID == other.ID && a.Balance.Equal(other.Balance)
}
