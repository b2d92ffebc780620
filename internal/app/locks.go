package app

import "sync"

// userLocks serializes submissions per user. The read-decide-write
// sequence against the store is not safe for overlapping submissions of
// one user; different users proceed in parallel with no coordination.
// Mutexes are kept for the process lifetime, bounded by the number of
// distinct users seen.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the user's mutex and returns its release func.
func (l *userLocks) acquire(user string) func() {
	l.mu.Lock()
	m, ok := l.locks[user]
	if !ok {
		m = &sync.Mutex{}
		l.locks[user] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
