package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	postings []Posting
	seen     map[string]struct{}
}

// NewInMemory creates a concurrency-safe in-memory journal.
func NewInMemory() Ledger {
	return &inMemoryLedger{seen: make(map[string]struct{})}
}

func (l *inMemoryLedger) Record(_ context.Context, posting Posting) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.seen[posting.TransactionID]; exists {
		return fmt.Errorf("transaction %s: %w", posting.TransactionID, ErrDuplicateTransaction)
	}
	l.seen[posting.TransactionID] = struct{}{}
	l.postings = append(l.postings, posting)
	return nil
}

func (l *inMemoryLedger) History(_ context.Context, accountID string, limit int) ([]Posting, error) {
	l.mu.RLock()
	matches := make([]Posting, 0)
	for _, p := range l.postings {
		if p.Involves(accountID) {
			matches = append(matches, p)
		}
	}
	l.mu.RUnlock()

	// Recording happens after the guards are released, so append order may
	// differ from commit order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CommittedAt.After(matches[j].CommittedAt)
	})
	if limit = normalizeLimit(limit); len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
