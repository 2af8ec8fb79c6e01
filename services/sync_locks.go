package services

import "sync"

// familyLocks replaces the module-level "isSyncingTables" style booleans:
// one in-progress flag per entity family, behind one mutex.
type familyLocks struct {
	mu      sync.Mutex
	running map[string]bool
}

func newFamilyLocks() *familyLocks {
	return &familyLocks{running: make(map[string]bool)}
}

func (fl *familyLocks) tryAcquire(family string) bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.running[family] {
		return false
	}
	fl.running[family] = true
	return true
}

func (fl *familyLocks) release(family string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	delete(fl.running, family)
}
