package transfer

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/transfers/internal/account"
)

// Code identifies a single violated transfer rule.
type Code string

const (
	CodeAmountNull            Code = "AMOUNT_TO_TRANSFER_IS_NULL"
	CodeAmountNotPositive     Code = "AMOUNT_TO_TRANSFER_IS_NEGATIVE_OR_ZERO"
	CodeFromIDNull            Code = "ACCOUNT_FROM_ID_IS_NULL"
	CodeToIDNull              Code = "ACCOUNT_TO_ID_IS_NULL"
	CodeSameAccount           Code = "TRANSFER_TO_THE_SAME_ACCOUNT"
	CodeFromNotFound          Code = "ACCOUNT_FROM_ID_NOT_FOUND"
	CodeFromBalanceNegative   Code = "ACCOUNT_FROM_BALANCE_NEGATIVE"
	CodeFromInsufficientFunds Code = "ACCOUNT_FROM_ID_DO_NOT_HAVE_ENOUGH_MONEY"
	CodeToNotFound            Code = "ACCOUNT_TO_ID_NOT_FOUND"
	CodeToBalanceNegative     Code = "ACCOUNT_TO_BALANCE_NEGATIVE"
)

// Transfer is the command to move Amount from FromID to ToID. An invalid
// Amount means the caller supplied none.
type Transfer struct {
	FromID string
	ToID   string
	Amount decimal.NullDecimal
}

// ValidationError carries every violated rule in evaluation order.
type ValidationError struct {
	Codes []Code
}

func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		codes[i] = string(c)
	}
	return "validation failed: " + strings.Join(codes, ",")
}

// Has reports whether code was recorded.
func (e *ValidationError) Has(code Code) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Errors accumulates rule violations during a validation pass.
type Errors struct {
	codes []Code
}

// Reject records a violated rule.
func (e *Errors) Reject(code Code) {
	e.codes = append(e.codes, code)
}

// Err returns a *ValidationError when anything was rejected, nil otherwise.
func (e *Errors) Err() error {
	if len(e.codes) == 0 {
		return nil
	}
	return &ValidationError{Codes: append([]Code(nil), e.codes...)}
}

// Policy selects which rules a validation pass evaluates.
type Policy struct {
	// SkipAccountChecks limits the pass to argument shape, for use before any
	// guard is held.
	SkipAccountChecks bool
}

var (
	// Structural is the pre-lock pass.
	Structural = Policy{SkipAccountChecks: true}
	// Authoritative is the post-lock pass over freshly read account state.
	Authoritative = Policy{}
)

// Lookup resolves accounts for the authoritative pass.
type Lookup interface {
	Get(ctx context.Context, id string) (account.Account, error)
}

// Validator runs the transfer rule table under a policy.
type Validator struct {
	policy   Policy
	accounts Lookup
}

// NewValidator builds a validator. accounts may be nil for the structural policy.
func NewValidator(policy Policy, accounts Lookup) *Validator {
	return &Validator{policy: policy, accounts: accounts}
}

// Validate evaluates t and records violations into errs. It returns an error
// only when account lookup fails for a reason other than absence.
func (v *Validator) Validate(ctx context.Context, t Transfer, errs *Errors) error {
	if !validateArguments(t, errs) {
		return nil
	}
	if v.policy.SkipAccountChecks {
		return nil
	}
	return v.validateAccounts(ctx, t, errs)
}

// validateArguments reports false when a missing identifier makes further
// rules meaningless.
func validateArguments(t Transfer, errs *Errors) bool {
	if !t.Amount.Valid {
		errs.Reject(CodeAmountNull)
	} else if !t.Amount.Decimal.IsPositive() {
		errs.Reject(CodeAmountNotPositive)
	}

	if t.FromID == "" {
		errs.Reject(CodeFromIDNull)
		return false
	}
	if t.ToID == "" {
		errs.Reject(CodeToIDNull)
		return false
	}
	if t.FromID == t.ToID {
		errs.Reject(CodeSameAccount)
	}
	return true
}

func (v *Validator) validateAccounts(ctx context.Context, t Transfer, errs *Errors) error {
	from, found, err := v.lookup(ctx, t.FromID)
	if err != nil {
		return err
	}
	if !found {
		errs.Reject(CodeFromNotFound)
		return nil
	}
	if from.Balance.IsNegative() {
		errs.Reject(CodeFromBalanceNegative)
	}
	if t.Amount.Valid && from.Balance.LessThan(t.Amount.Decimal) {
		errs.Reject(CodeFromInsufficientFunds)
	}

	to, found, err := v.lookup(ctx, t.ToID)
	if err != nil {
		return err
	}
	if !found {
		errs.Reject(CodeToNotFound)
		return nil
	}
	if to.Balance.IsNegative() {
		errs.Reject(CodeToBalanceNegative)
	}
	return nil
}

func (v *Validator) lookup(ctx context.Context, id string) (account.Account, bool, error) {
	if v.accounts == nil {
		return account.Account{}, false, nil
	}
	a, err := v.accounts.Get(ctx, id)
	if errors.Is(err, account.ErrNotFound) {
		return account.Account{}, false, nil
	}
	if err != nil {
		return account.Account{}, false, err
	}
	return a, true, nil
}
