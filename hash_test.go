package othello

import (
	"testing"
	"unsafe"
)

func TestReduce32_Bounds(t *testing.T) {
	xs := []uint32{0, 1, 0x7fffffff, 0x80000000, 0xffffffff}
	ns := []uint32{1, 2, 3, 7, 64, 4096, 1 << 20}
	for _, n := range ns {
		for _, x := range xs {
			if got := reduce32(x, n); got >= n {
				t.Fatalf("reduce32(%#x, %d) = %d out of range", x, n, got)
			}
		}
	}
	if reduce32(0xffffffff, 8) != 7 {
		t.Fatalf("top of range must map to the last bucket")
	}
	if reduce32(0, 8) != 0 {
		t.Fatalf("bottom of range must map to the first bucket")
	}
}

func TestReduce32_Monotone(t *testing.T) {
	// Multiply-shift reduction preserves order of the inputs.
	prev := uint32(0)
	for x := uint64(0); x <= 0xffffffff; x += 0x10001 {
		got := reduce32(uint32(x), 1000)
		if got < prev {
			t.Fatalf("reduction not monotone at %#x: %d < %d", x, got, prev)
		}
		prev = got
	}
}

func TestDefaultHashers_Deterministic(t *testing.T) {
	h64, h32 := defaultHashers[uint64]()
	k := uint64(0xdeadbeef)
	p := unsafe.Pointer(&k)
	if h64(p, 7) != h64(p, 7) || h32(p, 7) != h32(p, 7) {
		t.Fatal("same key and seed must produce the same hash")
	}
	if h64(p, 7) == h64(p, 8) {
		t.Fatal("different seeds must not collide on a fixed key")
	}

	s64, s32 := defaultHashers[string]()
	s := "othello"
	sp := unsafe.Pointer(&s)
	if s64(sp, 1) != s64(sp, 1) || s32(sp, 1) != s32(sp, 1) {
		t.Fatal("string hash must be deterministic")
	}
	if s64(sp, 1) == s64(sp, 2) {
		t.Fatal("string hash must depend on the seed")
	}
}

func TestIndices_RangeAndDeterminism(t *testing.T) {
	d := mustNew[uint64](t, 8, 0, Snapshot{
		Ma: 100, Mb: 300, Seed: 42,
		Words: make([]uint64, fieldWords(400, 8)),
	})
	for k := uint64(0); k < 10000; k++ {
		a, b := d.Indices(k)
		if a >= 100 {
			t.Fatalf("k=%d aIdx=%d out of array A", k, a)
		}
		if b < 100 || b >= 400 {
			t.Fatalf("k=%d bIdx=%d out of array B", k, b)
		}
		a2, b2 := d.Indices(k)
		if a != a2 || b != b2 {
			t.Fatalf("k=%d mapping not deterministic", k)
		}
	}
}

func TestIndices_Uniformity(t *testing.T) {
	const buckets = 64
	d := mustNew[uint64](t, 8, 0, Snapshot{
		Ma: buckets, Mb: buckets, Seed: 7,
		Words: make([]uint64, fieldWords(2*buckets, 8)),
	})

	const n = 100000
	var countA, countB [buckets]int
	for k := uint64(0); k < n; k++ {
		a, b := d.Indices(k)
		countA[a]++
		countB[b-buckets]++
	}

	// Loose uniformity bound: no bucket further than 2x from the mean.
	const mean = n / buckets
	for i := range buckets {
		if countA[i] < mean/2 || countA[i] > mean*2 {
			t.Fatalf("A bucket %d count %d far from mean %d", i, countA[i], mean)
		}
		if countB[i] < mean/2 || countB[i] > mean*2 {
			t.Fatalf("B bucket %d count %d far from mean %d", i, countB[i], mean)
		}
	}
}

func TestDigest_IndependentOfLookupPath(t *testing.T) {
	snap := Snapshot{
		Ma: 16, Mb: 16, Seed: 1, DigestSeed: 99,
		Words: make([]uint64, fieldWords(32, 8)),
	}
	d := mustNew[uint64](t, 8, 0, snap)
	dig := d.Digest(12345)
	if dig != d.Digest(12345) {
		t.Fatal("digest must be deterministic")
	}
	d.FillSingle(3, 0xff)
	if dig != d.Digest(12345) {
		t.Fatal("digest must not depend on table contents")
	}
}
