package library

import "sync"

// nameLocks hands out one mutex per playlist name. Entries are dropped when
// the last holder releases them.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	mu   sync.Mutex
	refs int
}

func newNameLocks() *nameLocks {
	return &nameLocks{
		locks: make(map[string]*nameLock),
	}
}

// lock blocks until the named lock is held and returns its release func.
func (l *nameLocks) lock(name string) func() {
	l.mu.Lock()
	entry, ok := l.locks[name]
	if !ok {
		entry = &nameLock{}
		l.locks[name] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, name)
		}
		l.mu.Unlock()
	}
}

// size returns the number of names currently locked or waited on.
func (l *nameLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
