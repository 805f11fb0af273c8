package ledger

import "sync"

// groupLocks hands out one mutex per group so that mutations of the same
// group are serialised while different groups proceed in parallel. An entry
// lives only while some caller holds or waits for it.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*groupLock
}

type groupLock struct {
	sync.Mutex
	refs int
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*groupLock)}
}

// lock acquires the group's mutex and returns its release function.
func (g *groupLocks) lock(groupID string) func() {
	g.mu.Lock()
	m, ok := g.locks[groupID]
	if !ok {
		m = &groupLock{}
		g.locks[groupID] = m
	}
	m.refs++
	g.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		g.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(g.locks, groupID)
		}
		g.mu.Unlock()
	}
}

// size returns the number of groups with a held or awaited lock.
func (g *groupLocks) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
