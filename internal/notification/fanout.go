package notification

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Fanout delivers each message to every configured sink concurrently.
type Fanout struct {
	sinks []Notifier
}

// NewFanout combines sinks; nil entries are ignored.
func NewFanout(sinks ...Notifier) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Send attempts every sink and joins their failures. One failing sink does
// not prevent delivery to the others.
func (f *Fanout) Send(ctx context.Context, message Message) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, sink := range f.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Send(ctx, message); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
