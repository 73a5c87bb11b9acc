package othello

import (
	"sync/atomic"
)

// rwLock32 is a spin-based Reader-Writer lock backed by a uint32.
// It is writer-preferred to prevent reader starvation.
//
// It shares its storage word with a guard's sequence counter: under the
// race detector the odd/even protocol is replaced by real lock
// acquisitions on the same word, so the detector can observe the
// happens-before edges.
type rwLock32 uint32

const (
	rwWriteMask = 1
	rwReadShift = 2
	rwReadUnit  = 1 << rwReadShift
	rwFreeState = 2 // 2 (binary 10) means initialized, no writer, no readers
)

// Lock acquires the write lock.
// It spins until the lock is free.
//
//go:nosplit
func (l *rwLock32) Lock() {
	var spins int
	for {
		// 1. Acquire Write Bit (Bit 0). This blocks NEW readers.
		s := atomic.LoadUint32((*uint32)(l))
		if s&rwWriteMask == 0 {
			if atomic.CompareAndSwapUint32((*uint32)(l), s, s|rwWriteMask) {
				// Acquired Write Bit.
				// 2. Wait for existing Readers to drain.
				// Readers are bits 2+. Bit 1 is the "initialized" bit.
				for {
					s2 := atomic.LoadUint32((*uint32)(l))
					if s2>>rwReadShift == 0 {
						return
					}
					delay(&spins)
				}
			}
		}
		delay(&spins)
	}
}

// Unlock releases the write lock.
// It resets the state to rwFreeState (2), indicating "initialized and free".
//
//go:nosplit
func (l *rwLock32) Unlock() {
	atomic.StoreUint32((*uint32)(l), rwFreeState)
}

// RLock acquires a read lock.
//
//go:nosplit
func (l *rwLock32) RLock() {
	var spins int
	for {
		s := atomic.LoadUint32((*uint32)(l))
		if s&rwWriteMask == 0 { // No writer
			if atomic.CompareAndSwapUint32((*uint32)(l), s, s+rwReadUnit) {
				return
			}
		}
		delay(&spins)
	}
}

// RUnlock releases a read lock.
//
//go:nosplit
func (l *rwLock32) RUnlock() {
	atomic.AddUint32((*uint32)(l), ^uint32(rwReadUnit-1))
}
