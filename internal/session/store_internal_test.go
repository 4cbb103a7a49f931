package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/metrica/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(ttl)
	store.now = clock.Now
	return store, clock
}

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(time.Minute)
	ctx := t.Context()

	_, ok, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	want := form.Session{ID: "s1", ChatID: 1, Kind: form.KindOrder, Step: form.StepClientName}
	require.NoError(t, store.Save(ctx, want))

	got, ok, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, _ = store.Load(ctx, 2)
	assert.False(t, ok, "sessions are per chat")

	require.NoError(t, store.Delete(ctx, 1))
	_, ok, _ = store.Load(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryStore_IdleTimeout(t *testing.T) {
	t.Parallel()
	store, clock := newTestStore(30 * time.Minute)
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, form.Session{ID: "s1", ChatID: 1}))

	clock.Advance(20 * time.Minute)
	_, ok, _ := store.Load(ctx, 1)
	require.True(t, ok)

	// Saving again restarts the idle timer.
	require.NoError(t, store.Save(ctx, form.Session{ID: "s1", ChatID: 1}))
	clock.Advance(20 * time.Minute)
	_, ok, _ = store.Load(ctx, 1)
	require.True(t, ok)

	clock.Advance(10 * time.Minute)
	_, ok, _ = store.Load(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()
	store, clock := newTestStore(time.Minute)
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, form.Session{ChatID: 1}))
	clock.Advance(30 * time.Second)
	require.NoError(t, store.Save(ctx, form.Session{ChatID: 2}))
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, store.Sweep())
	assert.Len(t, store.sessions, 1)
	assert.Contains(t, store.sessions, int64(2))
}

func TestMemoryStore_RunStopsWithContext(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(time.Nanosecond)
	require.NoError(t, store.Save(t.Context(), form.Session{ChatID: 1}))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sessions) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLocalLocker(t *testing.T) {
	t.Parallel()
	locker := NewLocalLocker()

	unlock, err := locker.Lock(t.Context(), 1)
	require.NoError(t, err)

	// A different chat is independent.
	unlockOther, err := locker.Lock(t.Context(), 2)
	require.NoError(t, err)
	unlockOther()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, 1)
	require.ErrorIs(t, err, ErrLockNotObtained)

	unlock()
	unlock, err = locker.Lock(t.Context(), 1)
	require.NoError(t, err)
	unlock()
}

func TestLocalLocker_ForgetsIdleChats(t *testing.T) {
	t.Parallel()
	locker := NewLocalLocker()
	chats := func() int {
		locker.mu.Lock()
		defer locker.mu.Unlock()
		return len(locker.chats)
	}

	for chatID := range int64(50) {
		unlock, err := locker.Lock(t.Context(), chatID)
		require.NoError(t, err)
		unlock()
	}
	assert.Equal(t, 0, chats())

	unlock, err := locker.Lock(t.Context(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, 1)
	require.ErrorIs(t, err, ErrLockNotObtained)
	assert.Equal(t, 1, chats())

	unlock()
	unlock()
	assert.Equal(t, 0, chats())

	// A waiter keeps the entry alive until it is done with it.
	unlock, err = locker.Lock(t.Context(), 2)
	require.NoError(t, err)
	acquired := make(chan func())
	go func() {
		next, err := locker.Lock(context.Background(), 2)
		if err == nil {
			acquired <- next
		}
	}()
	assert.Eventually(t, func() bool {
		locker.mu.Lock()
		defer locker.mu.Unlock()
		return locker.chats[2] != nil && locker.chats[2].refs == 2
	}, time.Second, time.Millisecond)
	unlock()

	select {
	case next := <-acquired:
		assert.Equal(t, 1, chats())
		next()
	case <-time.After(time.Second):
		t.Fatal("waiter did not obtain the released lock")
	}
	assert.Equal(t, 0, chats())
}

func TestLocalLocker_Serializes(t *testing.T) {
	t.Parallel()
	locker := NewLocalLocker()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), 7)
			if err != nil {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}
