package othello

import (
	"strings"
	"testing"
)

// buildAssignment places keys on pairwise-unused slots and returns the
// placed keys with their expected values. It stands in for a control
// plane: real assignments come from a graph solver, but independent
// placements satisfy the same reconstruction identity.
func buildAssignment(d *DataPlane[uint64], limit int) map[uint64]uint64 {
	owned := make(map[uint32]bool)
	want := make(map[uint64]uint64)
	for k := uint64(0); k < 100000 && len(want) < limit; k++ {
		a, b := d.Indices(k)
		if owned[a] || owned[b] {
			continue
		}
		owned[a], owned[b] = true, true
		v := (k*131 + 17) & 0xffff
		d.FillSingle(a, v^d.SlotValue(b))
		want[k] = v
	}
	return want
}

func TestVerify_Clean(t *testing.T) {
	d := mustNew[uint64](t, 16, 0, emptySnapshot(4096, 4096, 16, 0, 23))
	want := buildAssignment(d, 1000)

	keys := make([]uint64, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	if err := d.Verify(keys, func(k uint64) uint64 { return want[k] }); err != nil {
		t.Fatal(err)
	}
	if err := d.Verify(nil, nil); err != nil {
		t.Fatalf("empty key set: %v", err)
	}
}

func TestVerify_DetectsCorruption(t *testing.T) {
	d := mustNew[uint64](t, 16, 0, emptySnapshot(4096, 4096, 16, 0, 23))
	want := buildAssignment(d, 200)

	keys := make([]uint64, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}

	// Smash one endpoint of the first key.
	a, _ := d.Indices(keys[0])
	d.FixSingle(a, 0x5a5a)

	err := d.Verify(keys, func(k uint64) uint64 { return want[k] })
	if err == nil {
		t.Fatal("corruption must fail verification")
	}
	if !strings.Contains(err.Error(), "verification failed") {
		t.Fatalf("unexpected error text: %v", err)
	}
}
