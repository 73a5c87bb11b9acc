package othello

// Patcher is the narrow surface a control plane depends on to patch a
// live table in place: read a slot, place a known-correct value, or push
// an XOR delta through part of the key graph. The data plane stays dumb;
// deciding which slots to touch (graph traversal, cycle handling,
// disjoint-set bookkeeping) is entirely the caller's job.
type Patcher interface {
	FillSingle(idx uint32, value uint64)
	FixSingle(idx uint32, delta uint64)
	FixComponent(indices []uint32, delta uint64)
	Slot(idx uint32) uint64
	SlotValue(idx uint32) uint64
}

var _ Patcher = (*DataPlane[string])(nil)

// FillSingle unconditionally overwrites the value sub-field of one slot.
// Used by the control plane to place an initial or known-correct value
// at a node.
func (d *DataPlane[K]) FillSingle(idx uint32, value uint64) {
	d.writer.Lock()
	d.fillValue(idx, value)
	d.writer.Unlock()
}

// FixSingle XORs delta into the value sub-field of one slot, propagating
// a correction through the reconstruction identity without recomputing
// from scratch.
func (d *DataPlane[K]) FixSingle(idx uint32, delta uint64) {
	d.writer.Lock()
	d.fixValue(idx, delta)
	d.writer.Unlock()
}

// FixComponent applies the same XOR delta to every listed slot.
//
// Precondition (the caller's): indices form one connected component of
// the bipartite slot graph whose root value was not yet finalized. After
// the call, every key whose two slots both lie in the component
// reconstructs to its assigned value again. The component is discovered
// by the control plane; this is a batch-apply primitive only.
//
// Readers may interleave between per-slot brackets and observe the
// component partially fixed; each individual slot transition is still
// tear-free.
func (d *DataPlane[K]) FixComponent(indices []uint32, delta uint64) {
	d.writer.Lock()
	for _, idx := range indices {
		d.fixValue(idx, delta)
	}
	d.writer.Unlock()
}

// fillValue writes one slot's value sub-field inside its guard bracket.
// Caller must hold the writer lock.
func (d *DataPlane[K]) fillValue(idx uint32, value uint64) {
	g := d.guards.at(idx)
	g.beginWrite()
	d.mem.setValue(idx, value)
	g.endWrite()
}

// fixValue XORs delta into one slot's value sub-field inside its guard
// bracket. Caller must hold the writer lock.
func (d *DataPlane[K]) fixValue(idx uint32, delta uint64) {
	g := d.guards.at(idx)
	g.beginWrite()
	d.mem.setValue(idx, d.mem.getValue(idx)^delta)
	g.endWrite()
}
