package memory

import (
	"context"
	"sync"
)

// Transactor serialises callbacks with a mutex. There is no rollback: callers
// must finish validating before they write.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
