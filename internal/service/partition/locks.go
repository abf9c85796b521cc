package partition

import "sync"

// Locks serializes read-modify-write cycles on one organizer's partition.
// Every service that rewrites a partition must share the same Locks value.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocks returns an empty lock set.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the organizer's lock and returns its release function.
func (l *Locks) Lock(organizerID string) func() {
	l.mu.Lock()
	m, ok := l.locks[organizerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[organizerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
