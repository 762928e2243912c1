package mocks

import (
	"context"
	"sync"
	"time"
)

// TokenLedger is an in-memory single-use token set.
type TokenLedger struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{used: map[string]struct{}{}}
}

func (l *TokenLedger) Consume(_ context.Context, jti string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.used[jti]; ok {
		return false, nil
	}
	l.used[jti] = struct{}{}
	return true, nil
}
