package othello

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SlotSource supplies slot contents one at a time, for control planes
// that keep key/value lists instead of a packed buffer of their own.
type SlotSource interface {
	// Slot returns the full packed content of slot i: control bits in
	// the low positions, the value sub-field above them.
	Slot(i uint32) uint64
}

// Snapshot is a finished control-plane assignment: the bucket geometry,
// the hash seeds, and the slot contents in one of two forms.
//
// Exactly one of Words and Source should be set. Words is a direct copy
// of a data-plane-shaped buffer the control plane already maintains;
// Source lets the data plane materialize the packed buffer on demand
// when the control plane only keeps value lists.
//
// Seed pins the slot mapping only together with the hash function: the
// built-in hashers derive from the process's randomized map hasher, so a
// snapshot that crosses a process boundary must be imported with
// [WithKeyHasher] (and [WithDigestHasher] if digests matter) set to the
// same stable functions the control plane used.
type Snapshot struct {
	Ma, Mb     uint32
	Seed       uint64
	DigestSeed uint64

	Words  []uint64
	Source SlotSource
}

// parallelWords is the minimum number of packed words per goroutine
// before materialization fans out.
const parallelWords = 64 * 1024

// New builds a data plane from a control-plane snapshot. valBits is the
// value width L, ctlBits the control width CL; valBits+ctlBits must not
// exceed 64 and the geometry must be non-empty. The snapshot's hash
// seeds are fixed for the table's lifetime.
//
// After construction the table is mutated only through the repair
// primitives; it is never resized (a new geometry means a new table and
// a pointer swap by the caller).
func New[K comparable](
	valBits, ctlBits uint8,
	snap Snapshot,
	opts ...func(*Config),
) (*DataPlane[K], error) {
	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if snap.Ma == 0 || snap.Mb == 0 {
		return nil, fmt.Errorf(
			"othello: empty bucket array (ma=%d, mb=%d)", snap.Ma, snap.Mb)
	}
	slots := uint64(snap.Ma) + uint64(snap.Mb)
	if slots > math.MaxUint32 {
		return nil, fmt.Errorf("othello: %d slots overflow 32-bit indexing", slots)
	}

	store, err := newFieldStore(uint32(slots), valBits, ctlBits)
	if err != nil {
		return nil, err
	}

	switch {
	case snap.Words != nil:
		if len(snap.Words) != len(store.words) {
			return nil, fmt.Errorf(
				"othello: snapshot has %d packed words, geometry needs %d",
				len(snap.Words), len(store.words))
		}
		copy(store.words, snap.Words)
	case snap.Source != nil:
		materialize(&store, snap.Source)
	default:
		if store.width != 0 {
			return nil, errors.New(
				"othello: snapshot carries neither packed words nor a slot source")
		}
	}

	hab, hd := cfg.keyHash, cfg.digestHash
	if hab == nil || hd == nil {
		dh64, dh32 := defaultHashers[K]()
		if hab == nil {
			hab = dh64
		}
		if hd == nil {
			hd = dh32
		}
	}

	touch := ctlBits > 0
	if cfg.touchCountSet {
		touch = cfg.touchCount && ctlBits > 0
	}

	return &DataPlane[K]{
		mem:        store,
		ma:         snap.Ma,
		mb:         snap.Mb,
		seed:       snap.Seed,
		digestSeed: snap.DigestSeed,
		hab:        hab,
		hd:         hd,
		touch:      touch,
		guards:     newGuardTable(cfg.guardCount),
	}, nil
}

// Sync re-imports a snapshot into a live table with the same geometry
// and seeds, slot by slot under the write protocol, so concurrent
// readers only ever observe whole old or whole new slot contents.
func (d *DataPlane[K]) Sync(snap Snapshot) error {
	if snap.Ma != d.ma || snap.Mb != d.mb {
		return fmt.Errorf(
			"othello: snapshot geometry %dx%d does not match table %dx%d",
			snap.Ma, snap.Mb, d.ma, d.mb)
	}
	if snap.Seed != d.seed || snap.DigestSeed != d.digestSeed {
		return errors.New("othello: hash seeds are fixed per table instance")
	}

	var at func(i uint32) uint64
	switch {
	case snap.Words != nil:
		if len(snap.Words) != len(d.mem.words) {
			return fmt.Errorf(
				"othello: snapshot has %d packed words, table has %d",
				len(snap.Words), len(d.mem.words))
		}
		view := d.mem
		view.words = snap.Words
		at = view.get
	case snap.Source != nil:
		at = snap.Source.Slot
	default:
		return errors.New(
			"othello: snapshot carries neither packed words nor a slot source")
	}

	d.writer.Lock()
	for i := uint32(0); i < d.mem.slots; i++ {
		g := d.guards.at(i)
		g.beginWrite()
		d.mem.set(i, at(i))
		g.endWrite()
	}
	d.writer.Unlock()
	return nil
}

// materialize fills the packed word array from a slot source. Each word
// is composed independently from the slots overlapping it, so chunks of
// words can be built in parallel without sharing any destination word.
func materialize(store *fieldStore, src SlotSource) {
	if store.width == 0 || len(store.words) == 0 {
		return
	}
	chunkSz, chunks := calcParallelism(
		len(store.words), parallelWords, runtime.GOMAXPROCS(0))
	if chunks == 1 {
		materializeRange(store, src, 0, len(store.words))
		return
	}
	var g errgroup.Group
	for c := range chunks {
		lo := c * chunkSz
		hi := min(lo+chunkSz, len(store.words))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			materializeRange(store, src, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

func materializeRange(store *fieldStore, src SlotSource, lo, hi int) {
	width := uint64(store.width)
	for w := lo; w < hi; w++ {
		base := uint64(w) * 64
		var word uint64
		for s := base / width; s < uint64(store.slots); s++ {
			bit := s * width
			if bit >= base+64 {
				break
			}
			v := src.Slot(uint32(s)) & store.mask
			if bit >= base {
				word |= v << (bit - base)
			} else {
				// The slot starts in the previous word; keep only the
				// part that spills into this one.
				word |= v >> (base - bit)
			}
		}
		store.words[w] = word
	}
}
