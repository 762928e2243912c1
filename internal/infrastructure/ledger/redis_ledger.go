// Package ledger records consumed one-time token ids in Redis.
package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "token:used:"

type RedisLedger struct {
	rdb *redis.Client
}

func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{rdb: rdb}
}

// Consume marks jti as used until ttl elapses. It reports false when the id
// had already been consumed.
func (l *RedisLedger) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := l.rdb.SetNX(ctx, keyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "ledger setnx")
	}
	return ok, nil
}
