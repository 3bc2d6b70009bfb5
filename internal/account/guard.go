package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrGuardTimeout indicates the guard could not be acquired within the bounded wait.
	ErrGuardTimeout = errors.New("account guard wait timed out")

	// ErrGuardInterrupted indicates the caller's context ended while waiting for the guard.
	ErrGuardInterrupted = errors.New("account guard wait interrupted")
)

// Guard is the exclusive-access primitive owned by a single account. Balance
// mutations are only safe while the guard is held.
type Guard struct {
	sem *semaphore.Weighted
}

// Release gives the guard back. Calling it more than once is a no-op.
type Release func()

func newGuard() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// Acquire waits at most wait for the guard. On success the returned Release
// must be called exactly when the critical section ends, typically via defer.
func (g *Guard) Acquire(ctx context.Context, wait time.Duration) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGuardInterrupted, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrGuardInterrupted, ctxErr)
		}
		return nil, ErrGuardTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.sem.Release(1) })
	}, nil
}
