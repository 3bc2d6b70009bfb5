package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures when a sink is considered unhealthy.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	Cooldown            time.Duration
}

// Breaker stops calling a failing sink until the cooldown elapses, so a slow
// or broken downstream does not add latency to every transfer.
type Breaker struct {
	next Notifier
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next with a circuit breaker named after the sink.
func NewBreaker(name string, next Notifier, settings BreakerSettings, logger *slog.Logger) *Breaker {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifier-" + name,
		MaxRequests: 1,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Warn("notifier breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
	})
	return &Breaker{next: next, cb: cb}
}

// Send forwards the message unless the breaker is open, in which case it
// returns gobreaker.ErrOpenState immediately.
func (b *Breaker) Send(ctx context.Context, message Message) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, message)
	})
	return err
}
