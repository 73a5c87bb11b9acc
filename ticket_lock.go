package othello

import (
	"sync/atomic"
)

// ticketLock is a fair, FIFO (First-In-First-Out) spin-lock.
//
// Unlike sync.Mutex, which allows "barging" (newcomers can steal the lock),
// ticketLock guarantees that goroutines acquire the lock in the exact order
// they called Lock().
//
// Implementation:
// It uses the classic "ticket" algorithm.
//   - Lock(): Takes a ticket number. Spins/Sleeps until `serving` == `my_ticket`.
//   - Unlock(): Increments `serving`, allowing the next ticket holder to proceed.
//
// It serializes the table's mutators (repair primitives and the optional
// touch-count path), which keeps the add-based guard brackets single-writer
// without demanding an external lock from the control plane. Critical
// sections are a handful of word writes, the regime this lock is meant for.
type ticketLock struct {
	_       noCopy
	next    atomic.Uint32
	serving atomic.Uint32
}

// Lock acquires the lock. Blocks until the lock is available.
func (m *ticketLock) Lock() {
	my := m.next.Add(1) - 1
	var spins int
	for {
		if m.serving.Load() == my {
			return
		}
		delay(&spins)
	}
}

// Unlock releases the lock.
func (m *ticketLock) Unlock() {
	m.serving.Add(1)
}
