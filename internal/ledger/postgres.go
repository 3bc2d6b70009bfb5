package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLedger persists the transfer journal in PostgreSQL. Amounts are
// stored as NUMERIC and travel as text so no precision is lost.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed journal.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Record inserts the posting. A repeated transaction id is reported as
// ErrDuplicateTransaction.
func (l *PostgresLedger) Record(ctx context.Context, posting Posting) error {
	txID, err := uuid.Parse(posting.TransactionID)
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}

	tag, err := l.db.Exec(ctx, `INSERT INTO transfer_postings
        (transaction_id, from_account, to_account, amount, from_balance, to_balance, committed_at)
        VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7)
        ON CONFLICT (transaction_id) DO NOTHING`,
		txID, posting.FromID, posting.ToID,
		posting.Amount.String(), posting.FromBalance.String(), posting.ToBalance.String(),
		posting.CommittedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", posting.TransactionID, ErrDuplicateTransaction)
	}
	return nil
}

// History returns the newest postings touching accountID.
func (l *PostgresLedger) History(ctx context.Context, accountID string, limit int) ([]Posting, error) {
	const query = `
        SELECT transaction_id, from_account, to_account,
               amount::text, from_balance::text, to_balance::text, committed_at
        FROM transfer_postings
        WHERE from_account = $1 OR to_account = $1
        ORDER BY committed_at DESC
        LIMIT $2`

	rows, err := l.db.Query(ctx, query, accountID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	postings := make([]Posting, 0)
	for rows.Next() {
		var p Posting
		var txID uuid.UUID
		var amount, fromBal, toBal string
		if err := rows.Scan(&txID, &p.FromID, &p.ToID, &amount, &fromBal, &toBal, &p.CommittedAt); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		p.TransactionID = txID.String()
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("posting amount: %w", err)
		}
		if p.FromBalance, err = decimal.NewFromString(fromBal); err != nil {
			return nil, fmt.Errorf("posting from balance: %w", err)
		}
		if p.ToBalance, err = decimal.NewFromString(toBal); err != nil {
			return nil, fmt.Errorf("posting to balance: %w", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postings: %w", err)
	}
	return postings, nil
}
