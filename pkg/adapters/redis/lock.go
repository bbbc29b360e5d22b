// Package redis provides the distributed mandate locker. Deployments that
// run multiple dispatcher replicas against one mandate point the gate ledger
// here so budget reservations stay serialized across processes.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockLost is returned on unlock when the key no longer holds our token,
// meaning the TTL expired and another holder may have taken over.
var ErrLockLost = errors.New("distributed lock lost before release")

// unlockScript deletes the key only when it still holds our token, so a
// late unlock cannot release a lock re-acquired by someone else.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.MandateLocker using Redis SET NX PX.
type Locker struct {
	client  *backend.Client
	prefix  string
	retryIn time.Duration
}

// NewLocker creates a Redis mandate locker. Keys are namespaced with the
// given prefix.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client:  client,
		prefix:  prefix,
		retryIn: 100 * time.Millisecond,
	}
}

func lockToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// Lock acquires the mandate lock, polling until it succeeds or the context
// is canceled. The returned UnlockFunc releases it via a check-and-delete
// Lua script.
func (l *Locker) Lock(ctx context.Context, mandateID string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "mandate-lock:" + mandateID
	token := lockToken()

	for {
		acquired, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring mandate lock: %w", err)
		}
		if acquired {
			return func(ctx context.Context) error {
				deleted, err := l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Int()
				if err != nil {
					return fmt.Errorf("redis error releasing mandate lock: %w", err)
				}
				if deleted == 0 {
					return fmt.Errorf("%w: %s", ErrLockLost, mandateID)
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryIn):
		}
	}
}
