package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// MandateLocker serializes mandate mutations across process replicas.
// When multiple dispatchers share one mandate (independent DAG branches on
// separate instances), the gate ledger wraps its check-and-reserve sequence
// in this lock so two invocations cannot both pass a budget check only one
// of them can satisfy.
type MandateLocker interface {
	// Lock blocks until the lock for the mandate ID is acquired, the context
	// is canceled, or the TTL expires (implementation specific).
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, mandateID string, ttl time.Duration) (UnlockFunc, error)
}
