package ledger

import (
	"sync"
	"testing"
	"time"
)

func TestGroupLocks(t *testing.T) {
	t.Run("same group is serialised", func(t *testing.T) {
		g := newGroupLocks()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			inside  int
			maxSeen int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := g.lock("trip")
				defer unlock()

				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
			}()
		}
		wg.Wait()
		if maxSeen != 1 {
			t.Errorf("expected at most one holder, saw %d", maxSeen)
		}
	})

	t.Run("different groups do not block each other", func(t *testing.T) {
		g := newGroupLocks()
		unlockTrip := g.lock("trip")
		defer unlockTrip()

		done := make(chan struct{})
		go func() {
			unlock := g.lock("flat")
			unlock()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on another group blocked")
		}
	})

	t.Run("released entries are dropped", func(t *testing.T) {
		g := newGroupLocks()
		unlock := g.lock("trip")
		if got := g.size(); got != 1 {
			t.Errorf("size while held = %d, want 1", got)
		}
		unlock()
		if got := g.size(); got != 0 {
			t.Errorf("size after release = %d, want 0", got)
		}
	})
}
