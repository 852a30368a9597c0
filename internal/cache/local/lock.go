package local

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// LockManager holds TTL locks in process memory.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]lease
	seq   uint64
	now   func() time.Time
}

type lease struct {
	token   uint64
	expires time.Time
}

var _ domain.LockManager = (*LockManager)(nil)

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]lease), now: time.Now}
}

// Acquire takes key for ttl. It returns domain.ErrLockHeld while another
// unexpired lease exists. The returned func releases only this lease.
func (m *LockManager) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.locks[key]; ok && now.Before(l.expires) {
		return nil, domain.ErrLockHeld
	}
	m.sweep(now)

	m.seq++
	token := m.seq
	m.locks[key] = lease{token: token, expires: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if l, ok := m.locks[key]; ok && l.token == token {
				delete(m.locks, key)
			}
		})
	}, nil
}

func (m *LockManager) sweep(now time.Time) {
	for k, l := range m.locks {
		if !now.Before(l.expires) {
			delete(m.locks, k)
		}
	}
}
