package notification

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultSubject is the NATS subject prefix used when none is configured.
const DefaultSubject = "transfers.notifications"

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes messages on "<subject>.<kind>".
type NATSNotifier struct {
	conn    Publisher
	subject string
}

// NewNATSNotifier builds a NATS notifier.
func NewNATSNotifier(conn Publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{conn: conn, subject: subject}
}

// Send publishes the JSON-encoded message.
func (n *NATSNotifier) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := n.conn.Publish(n.subject+"."+message.Kind, payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
