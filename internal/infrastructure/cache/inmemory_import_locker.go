package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/google/uuid"
)

// lockEntry is a held key with its owner token
type lockEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryImportLocker implements fiscalsync.ImportLocker using an in-memory map.
// Locks are only visible to the current process, so it is suitable for
// single-instance deployments and testing.
type InMemoryImportLocker struct {
	mu        sync.Mutex
	entries   map[string]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryImportLocker creates a new in-memory locker.
// It starts a background goroutine to clean up expired locks.
func NewInMemoryImportLocker() *InMemoryImportLocker {
	l := &InMemoryImportLocker{
		entries:  make(map[string]lockEntry),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire takes key for ttl. It fails with fiscalsync.ErrImportInProgress
// while another holder owns an unexpired lock on the same key.
func (l *InMemoryImportLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (fiscalsync.ImportLock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, exists := l.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return nil, fiscalsync.ErrImportInProgress
	}

	token := uuid.NewString()
	l.entries[key] = lockEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return &memoryLock{locker: l, key: key, token: token}, nil
}

func (l *InMemoryImportLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// an expired lock may already belong to someone else
	if e, exists := l.entries[key]; exists && e.token == token {
		delete(l.entries, key)
	}
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (l *InMemoryImportLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired locks
func (l *InMemoryImportLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryImportLocker) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, key)
		}
	}
}

// Size returns the number of held locks (for testing/monitoring)
func (l *InMemoryImportLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

type memoryLock struct {
	locker *InMemoryImportLocker
	key    string
	token  string
	once   sync.Once
}

func (m *memoryLock) Release(context.Context) error {
	m.once.Do(func() { m.locker.release(m.key, m.token) })
	return nil
}

// Ensure InMemoryImportLocker implements ImportLocker
var _ fiscalsync.ImportLocker = (*InMemoryImportLocker)(nil)
