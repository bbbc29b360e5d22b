package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisadapter "github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*redisadapter.Locker, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisadapter.NewLocker(client, "brain:"), srv
}

func TestLocker_LockAndUnlock(t *testing.T) {
	locker, srv := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "mandate-demo", time.Minute)
	require.NoError(t, err)
	assert.True(t, srv.Exists("brain:mandate-lock:mandate-demo"))

	require.NoError(t, unlock(ctx))
	assert.False(t, srv.Exists("brain:mandate-lock:mandate-demo"))

	// Lock is immediately re-acquirable.
	unlock2, err := locker.Lock(ctx, "mandate-demo", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_ContendedLockTimesOut(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "mandate-demo", time.Minute)
	require.NoError(t, err)
	defer func() { _ = unlock(ctx) }()

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(waitCtx, "mandate-demo", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_IndependentMandatesDoNotContend(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "mandate-a", time.Minute)
	require.NoError(t, err)
	unlockB, err := locker.Lock(ctx, "mandate-b", time.Minute)
	require.NoError(t, err)

	require.NoError(t, unlockA(ctx))
	require.NoError(t, unlockB(ctx))
}

func TestLocker_UnlockAfterExpiryReportsLost(t *testing.T) {
	locker, srv := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "mandate-demo", 50*time.Millisecond)
	require.NoError(t, err)

	// Simulate TTL expiry; the safe-release script must refuse to delete a
	// key it no longer owns.
	srv.FastForward(time.Second)

	err = unlock(ctx)
	assert.ErrorIs(t, err, redisadapter.ErrLockLost)
}
