package othello

import (
	"sync/atomic"

	"github.com/llxisdsh/othello/internal/opt"
)

// defaultGuardCount is the default number of sequence guards per table.
// Guards are aliased across slots (slot & mask), so the guard array stays
// O(1) in the table size; the price is spurious reader retries when an
// unrelated slot behind the same guard is written.
const defaultGuardCount = 8192

// seqGuard coordinates tear-free publication for the slots aliased to it.
//
// Role:
//   - Sequence guard only: holds the odd/even counter, no payload.
//   - Stable-window reads: readers copy slot words while the sequence is
//     even and unchanged across both fence points.
//   - Locked publishes: writers flip the sequence to odd with an add,
//     mutate, then add again to even. The add-based bracket is only safe
//     because all table mutators are serialized by a ticket lock.
//
// Under the race detector the counter word degrades to rwLock32 so the
// protocol stays exact and visible to the detector.
type seqGuard uint32

// beginRead enters the reader window if the sequence is even.
// Returns the observed sequence and ok=true when even.
//
//go:nosplit
func (g *seqGuard) beginRead() (s1 uint32, ok bool) {
	if opt.Race_ {
		(*rwLock32)(g).RLock()
		return 0, true
	}
	s1 = atomic.LoadUint32((*uint32)(g))
	return s1, s1&1 == 0
}

// endRead verifies window stability: returns true if the sequence is
// unchanged since beginRead.
//
//go:nosplit
func (g *seqGuard) endRead(s1 uint32) (ok bool) {
	if opt.Race_ {
		(*rwLock32)(g).RUnlock()
		return true
	}
	s2 := atomic.LoadUint32((*uint32)(g))
	return s1 == s2
}

// beginWrite enters the writer window using add (odd).
// Only safe while the table's writer lock is held.
//
//go:nosplit
func (g *seqGuard) beginWrite() {
	if opt.Race_ {
		(*rwLock32)(g).Lock()
		return
	}
	atomic.AddUint32((*uint32)(g), 1)
}

// endWrite exits the writer window using add (even).
// Only safe while the table's writer lock is held.
//
//go:nosplit
func (g *seqGuard) endWrite() {
	if opt.Race_ {
		(*rwLock32)(g).Unlock()
		return
	}
	atomic.AddUint32((*uint32)(g), 1)
}

// guardTable is a fixed, power-of-two array of sequence guards shared by
// all slots of one table. It is sized once at construction and never
// resized; many slots intentionally share one guard.
type guardTable struct {
	guards []seqGuard
	mask   uint32
}

func newGuardTable(count int) guardTable {
	if count <= 0 {
		count = defaultGuardCount
	}
	count = nextPowOf2(count)
	return guardTable{
		guards: make([]seqGuard, count),
		mask:   uint32(count - 1),
	}
}

// at returns the guard that covers the given slot index.
//
//go:nosplit
func (t *guardTable) at(slot uint32) *seqGuard {
	return &t.guards[slot&t.mask]
}
