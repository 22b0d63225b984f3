package slotlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLocked is returned when the slot is already held by someone else.
var ErrLocked = errors.New("slot is locked")

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker acquires exclusive, expiring locks on keys.
type Locker interface {
	// Lock acquires key for at most ttl. It returns ErrLocked without
	// blocking when the key is held.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// Pinger is implemented by lockers that depend on a remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Key builds the lock key for an hour range on a date.
func Key(date string, startHour, endHour int) string {
	return fmt.Sprintf("slot:%s:%d-%d", date, startHour, endHour)
}

func noopUnlock(context.Context) error { return nil }

// Noop never blocks and never locks.
type Noop struct{}

// Lock always succeeds.
func (Noop) Lock(context.Context, string, time.Duration) (UnlockFunc, error) {
	return noopUnlock, nil
}

// Memory is an in-process Locker.
type Memory struct {
	mu   sync.Mutex
	held map[string]memoryLease
	seq  uint64
	now  func() time.Time
}

type memoryLease struct {
	id      uint64
	expires time.Time
}

// NewMemory creates an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{
		held: make(map[string]memoryLease),
		now:  time.Now,
	}
}

// Lock acquires key unless an unexpired lease exists.
func (m *Memory) Lock(_ context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if lease, ok := m.held[key]; ok && now.Before(lease.expires) {
		return nil, ErrLocked
	}

	m.seq++
	id := m.seq
	m.held[key] = memoryLease{id: id, expires: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Only release our own lease; it may have expired and been re-taken.
		if lease, ok := m.held[key]; ok && lease.id == id {
			delete(m.held, key)
		}
		return nil
	}, nil
}
