package services

import "sync"

// userLocks serializes event handling per user without blocking other
// users. Locks are never removed; the per-user footprint is one mutex.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uint]*sync.Mutex)}
}

func (u *userLocks) lock(userID uint) *sync.Mutex {
	u.mu.Lock()
	l, ok := u.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		u.locks[userID] = l
	}
	u.mu.Unlock()
	l.Lock()
	return l
}
