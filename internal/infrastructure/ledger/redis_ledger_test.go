package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedisLedger(rdb)
	ctx := context.Background()

	ok, err := l.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Consume(ctx, "jti-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// the marker expires with the token
	mr.FastForward(2 * time.Minute)
	ok, err = l.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsumeRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, err := NewRedisLedger(rdb).Consume(context.Background(), "jti", time.Minute)
	assert.Error(t, err)
}
