package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDuplicateTransaction indicates a posting with the same transaction
// identifier was already recorded.
var ErrDuplicateTransaction = errors.New("duplicate transaction")

// DefaultHistoryLimit caps History when the caller passes a non-positive limit.
const DefaultHistoryLimit = 50

// Posting is the journal record of one committed transfer. Balances are the
// values written while both account guards were held.
type Posting struct {
	TransactionID string
	FromID        string
	ToID          string
	Amount        decimal.Decimal
	FromBalance   decimal.Decimal
	ToBalance     decimal.Decimal
	CommittedAt   time.Time
}

// Involves reports whether accountID is either side of the posting.
func (p Posting) Involves(accountID string) bool {
	return p.FromID == accountID || p.ToID == accountID
}

// Ledger is the append-only journal of committed transfers.
type Ledger interface {
	Record(ctx context.Context, posting Posting) error
	// History returns postings touching accountID, newest first.
	History(ctx context.Context, accountID string, limit int) ([]Posting, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
