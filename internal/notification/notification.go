package notification

import (
	"context"
	"log/slog"
	"time"
)

const (
	// KindTransferDebit tells an account owner funds left the account.
	KindTransferDebit = "transfer_debit"
	// KindTransferCredit tells an account owner funds arrived in the account.
	KindTransferCredit = "transfer_credit"
)

// Message describes a notification payload.
type Message struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Destination   string    `json:"destination"`
	TransactionID string    `json:"transaction_id"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("id", message.ID),
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("transaction_id", message.TransactionID),
		slog.String("body", message.Body),
	)
	return nil
}
