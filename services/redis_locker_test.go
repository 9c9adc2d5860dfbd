package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLockerExcludes(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLocker(t)

	release, err := l.Acquire(ctx, "reseller:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockPrefix+"reseller:1"))
	assert.Equal(t, time.Minute, mr.TTL(lockPrefix+"reseller:1"))

	_, err = l.Acquire(ctx, "reseller:1", time.Minute)
	assert.ErrorIs(t, err, ErrSettlementInProgress)

	other, err := l.Acquire(ctx, "reseller:2", time.Minute)
	require.NoError(t, err, "keys are independent")
	other()

	release()
	assert.False(t, mr.Exists(lockPrefix+"reseller:1"))

	again, err := l.Acquire(ctx, "reseller:1", time.Minute)
	require.NoError(t, err)
	again()
}

func TestRedisLockerStaleReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLocker(t)

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	fresh, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err, "an expired lock can be taken over")
	token, err := mr.Get(lockPrefix + "k")
	require.NoError(t, err)

	stale()
	current, err := mr.Get(lockPrefix + "k")
	require.NoError(t, err, "the stale release must not delete the new holder's key")
	assert.Equal(t, token, current)

	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrSettlementInProgress)
	fresh()
	assert.False(t, mr.Exists(lockPrefix+"k"))
}

func TestRedisLockerReportsConnectionFailure(t *testing.T) {
	l, mr := newRedisLocker(t)
	mr.Close()

	_, err := l.Acquire(context.Background(), "k", time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSettlementInProgress)
}
