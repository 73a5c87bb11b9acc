// Package othello implements the data plane of an l-Othello classifier:
// a bit-packed, two-array XOR structure serving lock-free concurrent
// lookups of small integer values, patched in place by an external
// control plane.
package othello

import (
	"errors"
	"unsafe"
)

// ErrNotFound is reserved for lookups that cannot produce a value.
// See [DataPlane.Get] for when (and whether) it is returned.
var ErrNotFound = errors.New("othello: no matched key")

// DataPlane is the read side of an l-Othello classifier: a static,
// space-minimal structure mapping keys to small integer values without
// storing the keys. Two logical arrays A and B live packed in one bit
// array; a key's value is the XOR of its A slot and its B slot, so each
// lookup costs two field reads regardless of table size.
//
// The slot assignment is computed externally by a control plane and
// imported via [New]; the data plane only serves lookups and applies the
// localized patches the control plane hands it (fill, XOR fix-up,
// connected-component fix-up). It never discovers or validates the
// key graph itself.
//
// Concurrency model:
//   - Readers: read s1 of both slots' guards (must be even), then the two
//     slot fields, then s2; if either guard moved or was odd, retry.
//     Lookups are lock-free: no blocking, bounded work per attempt.
//   - Writers: serialized through a FIFO ticket lock; each slot mutation
//     is bracketed by guard increments (odd during the write, even after),
//     so a reader can never accept a torn snapshot.
//   - Guards are aliased (slot & mask, default 8192 guards): writes to an
//     unrelated slot behind the same guard force extra retries, never
//     wrong data. This bounds guard memory independent of table size.
//
// Classification semantics: a key that was never part of the control
// plane's assignment still yields some value derived from its hash path.
// The structure alone cannot distinguish members from non-members; layer
// a digest/filter on top (see [DataPlane.Digest]) if negatives matter.
type DataPlane[K comparable] struct {
	_          noCopy
	mem        fieldStore
	ma         uint32 // number of slots in array A
	mb         uint32 // number of slots in array B; B occupies [ma, ma+mb)
	seed       uint64
	digestSeed uint64
	hab        Hasher64
	hd         Hasher32
	touch      bool
	_          [cacheLineSize]byte // keep writer state off the read-path line
	guards     guardTable
	writer     ticketLock
}

// indices computes the two slot indices key constrains. The low half of
// the 64-bit hash places the A slot, the high half places the B slot.
// A control plane must reproduce this formula exactly.
//
//go:nosplit
func (d *DataPlane[K]) indices(key *K) (a, b uint32) {
	h := d.hab(noescape(unsafe.Pointer(key)), d.seed)
	b = reduce32(uint32(h>>32), d.mb) + d.ma
	a = reduce32(uint32(h), d.ma)
	return a, b
}

// Indices returns the A and B slot indices for key, exactly as the
// lookup path computes them. Exposed so a control plane can mirror the
// mapping bit-for-bit.
func (d *DataPlane[K]) Indices(key K) (a, b uint32) {
	return d.indices(&key)
}

// Digest returns the auxiliary 32-bit digest of key. The lookup path
// does not use it; it exists for membership-filter layers above the
// table.
func (d *DataPlane[K]) Digest(key K) uint32 {
	return d.hd(noescape(unsafe.Pointer(&key)), d.digestSeed)
}

// Lookup returns the value assigned to key by the control plane.
//
// The boolean is true whenever a stable snapshot was obtained, which the
// retry loop always eventually achieves; it never reports absence. For a
// key outside the assignment the result is an arbitrary but
// deterministic value.
//
// When the table carries control bits and touch counting is enabled,
// each lookup also increments the control sub-field of both touched
// slots, making lookups writers at the memory level.
func (d *DataPlane[K]) Lookup(key K) (uint64, bool) {
	a, b := d.indices(&key)
	vc := d.readPair(a, b)
	if d.touch {
		d.touchPair(a, b)
	}
	return vc >> d.mem.ctlBits, true
}

// Get is the value-returning variant of [DataPlane.Lookup]. With the
// core protocol it never fails: the retry loop has no path that
// concludes "key absent", so ErrNotFound is reserved for a digest layer
// that can produce genuine negatives.
func (d *DataPlane[K]) Get(key K) (uint64, error) {
	v, ok := d.Lookup(key)
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

// readPair obtains a consistent snapshot of slots a and b and returns
// the XOR of their full contents. When both slots alias the same guard
// a single bracket covers both reads; the nested two-guard path
// requires distinct guards.
func (d *DataPlane[K]) readPair(a, b uint32) uint64 {
	ga, gb := d.guards.at(a), d.guards.at(b)
	if ga == gb {
		return d.readPairShared(ga, a, b)
	}
	if sa, ok := ga.beginRead(); ok {
		if sb, ok2 := gb.beginRead(); ok2 {
			va := d.mem.get(a)
			vb := d.mem.get(b)
			okB := gb.endRead(sb)
			okA := ga.endRead(sa)
			if okA && okB {
				return va ^ vb
			}
		}
	}
	return d.readPairSlow(ga, gb, a, b)
}

func (d *DataPlane[K]) readPairSlow(ga, gb *seqGuard, a, b uint32) uint64 {
	var spins int
	for {
		if sa, ok := ga.beginRead(); ok {
			if sb, ok2 := gb.beginRead(); ok2 {
				va := d.mem.get(a)
				vb := d.mem.get(b)
				okB := gb.endRead(sb)
				okA := ga.endRead(sa)
				if okA && okB {
					return va ^ vb
				}
			}
		}
		delay(&spins)
	}
}

// readPairShared reads both slots under one guard bracket.
func (d *DataPlane[K]) readPairShared(g *seqGuard, a, b uint32) uint64 {
	var spins int
	for {
		if s1, ok := g.beginRead(); ok {
			va := d.mem.get(a)
			vb := d.mem.get(b)
			if g.endRead(s1) {
				return va ^ vb
			}
		}
		delay(&spins)
	}
}

// readSlot obtains a consistent snapshot of one slot's full content.
func (d *DataPlane[K]) readSlot(idx uint32) uint64 {
	g := d.guards.at(idx)
	var spins int
	for {
		if s1, ok := g.beginRead(); ok {
			v := d.mem.get(idx)
			if g.endRead(s1) {
				return v
			}
		}
		delay(&spins)
	}
}

// touchPair bumps the control sub-field of both slots under the write
// protocol, giving approximate access-frequency accounting with the same
// consistency guarantees as data writes.
func (d *DataPlane[K]) touchPair(a, b uint32) {
	d.writer.Lock()
	d.bumpControl(a)
	d.bumpControl(b)
	d.writer.Unlock()
}

// bumpControl increments the low control bits of one slot, wrapping
// within the control width. The value sub-field is untouched, so the XOR
// reconstruction is unaffected.
func (d *DataPlane[K]) bumpControl(idx uint32) {
	g := d.guards.at(idx)
	g.beginWrite()
	vc := d.mem.get(idx)
	c := (vc + 1) & d.mem.ctlMask
	d.mem.set(idx, vc&^d.mem.ctlMask|c)
	g.endWrite()
}

// Slot returns the full packed content (value and control bits) of one
// slot, read under the guard protocol. Intended for control-plane
// bookkeeping.
func (d *DataPlane[K]) Slot(idx uint32) uint64 {
	return d.readSlot(idx)
}

// SlotValue returns only the value sub-field of one slot.
func (d *DataPlane[K]) SlotValue(idx uint32) uint64 {
	return d.readSlot(idx) >> d.mem.ctlBits
}

// Buckets returns the sizes of logical arrays A and B. Slots [0, ma)
// belong to A and [ma, ma+mb) to B.
func (d *DataPlane[K]) Buckets() (ma, mb uint32) {
	return d.ma, d.mb
}

// ValueBits returns the width of the value sub-field in bits.
func (d *DataPlane[K]) ValueBits() uint8 {
	return d.mem.valBits
}

// ControlBits returns the width of the control sub-field in bits.
func (d *DataPlane[K]) ControlBits() uint8 {
	return d.mem.ctlBits
}

// MemoryCost reports the byte size of the packed slot array, for
// capacity planning and telemetry.
func (d *DataPlane[K]) MemoryCost() uint64 {
	return d.mem.byteSize()
}
