package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient connects to the redis server at url and checks it answers.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	slog.Info("Connected to redis.", slog.String("addr", opts.Addr))
	return client, nil
}

// Locker hands out redislock locks. A key already held elsewhere fails
// fast with apperrors.ErrContention instead of waiting.
type Locker struct {
	client *redislock.Client
	prefix string
}

// NewLocker wraps client. Every key is namespaced with prefix.
func NewLocker(client goredis.UniversalClient, prefix string) *Locker {
	return &Locker{client: redislock.New(client), prefix: prefix}
}

var _ portssvc.Locker = (*Locker)(nil)

func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (portssvc.Lock, error) {
	lock, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: lock %s is held", apperrors.ErrContention, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return &heldLock{lock: lock, key: key}, nil
}

type heldLock struct {
	lock *redislock.Lock
	key  string
}

// Release frees the lock. A lock that already expired is not an error.
func (h *heldLock) Release(ctx context.Context) error {
	err := h.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", h.key, err)
	}
	return nil
}
