package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

// Locker serializes the handling of updates that belong to the same chat.
// The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, chatID int64) (func(), error)
}

// LocalLocker serializes updates within one process.
type LocalLocker struct {
	mu    sync.Mutex
	chats map[int64]*chatLock
}

// chatLock is dropped from the map once nobody holds or waits for it.
type chatLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{chats: make(map[int64]*chatLock)}
}

// Lock waits until the chat is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, chatID int64) (func(), error) {
	l.mu.Lock()
	lock, ok := l.chats[chatID]
	if !ok {
		lock = &chatLock{ch: make(chan struct{}, 1)}
		l.chats[chatID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-lock.ch
				l.unref(chatID, lock)
			})
		}, nil
	case <-ctx.Done():
		l.unref(chatID, lock)
		return nil, fmt.Errorf("%w: %w", ErrLockNotObtained, ctx.Err())
	}
}

func (l *LocalLocker) unref(chatID int64, lock *chatLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.chats, chatID)
	}
}

// RedisLocker serializes updates across bot replicas.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
}

// NewRedisLocker creates a RedisLocker. A held lock expires after ttl even if it is never released.
func NewRedisLocker(client redislock.RedisClient, ttl time.Duration) *RedisLocker {
	const (
		retries = 20
		backoff = 100 * time.Millisecond
	)
	return &RedisLocker{client: redislock.New(client), ttl: ttl, retries: retries, backoff: backoff}
}

// Lock retries for a short while before giving up with ErrLockNotObtained.
func (l *RedisLocker) Lock(ctx context.Context, chatID int64) (func(), error) {
	key := fmt.Sprintf("metrica:lock:%d", chatID)
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain chat lock: %w", err)
	}

	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}
