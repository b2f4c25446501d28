package ledger

import (
	"context"
	"sync"
	"time"
)

// accountLocks serializes mutations per account. Each account gets a
// one-slot channel semaphore; different accounts never contend.
type accountLocks struct {
	mu    sync.Mutex
	chans map[string]chan struct{}
}

func newAccountLocks() *accountLocks {
	return &accountLocks{chans: make(map[string]chan struct{})}
}

// acquire blocks until the account lock is held, the wait budget runs
// out (ErrConcurrentModification, retryable), or ctx is cancelled.
func (l *accountLocks) acquire(ctx context.Context, accountID string, wait time.Duration) (func(), error) {
	l.mu.Lock()
	ch, ok := l.chans[accountID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.chans[accountID] = ch
	}
	l.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrConcurrentModification
	}
}
