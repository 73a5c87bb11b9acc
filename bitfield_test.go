package othello

import (
	"testing"
)

func TestFieldStore_RoundTrip(t *testing.T) {
	widths := []uint8{1, 3, 5, 8, 13, 16, 21, 32, 33, 48, 63, 64}
	const slots = 129

	for _, w := range widths {
		s, err := newFieldStore(slots, w, 0)
		if err != nil {
			t.Fatalf("width=%d: %v", w, err)
		}
		for i := uint32(0); i < slots; i++ {
			v := (uint64(i)*0x9e3779b97f4a7c15 + 1) & s.mask
			s.set(i, v)
			if got := s.get(i); got != v {
				t.Fatalf("width=%d slot=%d got=%#x want=%#x", w, i, got, v)
			}
		}
		// Neighbors must survive interleaved writes, including slots
		// whose bit range straddles a word boundary.
		for i := uint32(0); i < slots; i++ {
			want := (uint64(i)*0x9e3779b97f4a7c15 + 1) & s.mask
			if got := s.get(i); got != want {
				t.Fatalf("width=%d slot=%d corrupted: got=%#x want=%#x", w, i, got, want)
			}
		}
	}
}

func TestFieldStore_StraddleOffsets(t *testing.T) {
	// width 13: slot 4 occupies bits [52, 65) and crosses the first word.
	s, err := newFieldStore(16, 13, 0)
	if err != nil {
		t.Fatal(err)
	}
	s.set(4, 0x1fff)
	if got := s.get(4); got != 0x1fff {
		t.Fatalf("straddling slot got=%#x want=%#x", got, 0x1fff)
	}
	if got := s.get(3); got != 0 {
		t.Fatalf("low neighbor dirtied: %#x", got)
	}
	if got := s.get(5); got != 0 {
		t.Fatalf("high neighbor dirtied: %#x", got)
	}
	s.set(4, 0)
	if s.words[0] != 0 || s.words[1] != 0 {
		t.Fatalf("clear left residue: %#x %#x", s.words[0], s.words[1])
	}
}

func TestFieldStore_ValueSubfield(t *testing.T) {
	s, err := newFieldStore(64, 8, 6)
	if err != nil {
		t.Fatal(err)
	}
	for i := uint32(0); i < 64; i++ {
		s.set(i, 0x3f) // saturate control bits
		s.setValue(i, uint64(i)+1)
		if got := s.getValue(i); got != uint64(i)+1 {
			t.Fatalf("slot=%d value got=%#x want=%#x", i, got, uint64(i)+1)
		}
		if got := s.get(i) & s.ctlMask; got != 0x3f {
			t.Fatalf("slot=%d control clobbered: %#x", i, got)
		}
	}
	// Every value in the full range survives a round trip.
	for v := uint64(0); v < 256; v++ {
		s.setValue(7, v)
		if got := s.getValue(7); got != v {
			t.Fatalf("v=%d got=%d", v, got)
		}
	}
}

func TestFieldStore_ZeroWidth(t *testing.T) {
	s, err := newFieldStore(10, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.words) != 0 {
		t.Fatalf("zero-width store allocated %d words", len(s.words))
	}
	s.set(3, 42) // must be a no-op, not a panic
	if got := s.get(3); got != 0 {
		t.Fatalf("got=%d", got)
	}
	s.setValue(3, 42)
	if got := s.getValue(3); got != 0 {
		t.Fatalf("value got=%d", got)
	}
}

func TestFieldStore_WidthTooWide(t *testing.T) {
	if _, err := newFieldStore(4, 60, 8); err == nil {
		t.Fatal("expected error for 68-bit slot width")
	}
	if _, err := newFieldStore(4, 64, 0); err != nil {
		t.Fatalf("64-bit slot width must be accepted: %v", err)
	}
}

func TestFieldWords(t *testing.T) {
	cases := []struct {
		slots uint32
		width uint8
		want  int
	}{
		{0, 8, 0},
		{8, 8, 1},
		{9, 8, 2},
		{4, 13, 1},
		{5, 13, 2},
		{100, 0, 0},
		{1, 64, 1},
	}
	for _, c := range cases {
		if got := fieldWords(c.slots, c.width); got != c.want {
			t.Fatalf("slots=%d width=%d got=%d want=%d", c.slots, c.width, got, c.want)
		}
	}
}
