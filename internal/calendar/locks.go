package calendar

import (
	"sync"
)

// propertyLocks serializes reconciliation passes per property. Two
// overlapping passes against the same property could both read "no existing
// booking" for a new UID and double-insert, so a pass holds its property's
// mutex for its full duration. Different properties sync independently.
type propertyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPropertyLocks() *propertyLocks {
	return &propertyLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// acquire locks the mutex for a property and returns its release function.
func (l *propertyLocks) acquire(propertyID string) func() {
	l.mu.Lock()
	m, ok := l.locks[propertyID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[propertyID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
