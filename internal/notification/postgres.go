package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of *pgxpool.Pool the outbox needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const insertOutbox = `INSERT INTO notification_outbox (id, kind, destination, transaction_id, body, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

// PostgresNotifier records notifications in an outbox table for asynchronous delivery.
type PostgresNotifier struct {
	db Execer
}

// NewPostgresNotifier builds an outbox notifier backed by PostgreSQL.
func NewPostgresNotifier(db Execer) *PostgresNotifier {
	return &PostgresNotifier{db: db}
}

// Send inserts the message into the outbox.
func (n *PostgresNotifier) Send(ctx context.Context, message Message) error {
	id, err := uuid.Parse(message.ID)
	if err != nil {
		return fmt.Errorf("notification id: %w", err)
	}
	_, err = n.db.Exec(ctx, insertOutbox, id, message.Kind, message.Destination, message.TransactionID,
		message.Body, message.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
