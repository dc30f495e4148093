package ledger

import "sync"

// identityLocks hands out one mutex per user identity so multi-step flows on
// the same record serialize while different users proceed in parallel.
type identityLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for the identity and returns its unlock func.
func (l *identityLocks) lock(userID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
