package othello

import (
	"testing"

	"github.com/llxisdsh/othello/internal/opt"
)

func TestSeqGuard_Brackets(t *testing.T) {
	if opt.Race_ {
		t.Skip("guards degrade to rwlocks under the race detector")
	}

	var g seqGuard

	s1, ok := g.beginRead()
	if !ok {
		t.Fatal("fresh guard must be readable")
	}
	if !g.endRead(s1) {
		t.Fatal("idle guard must validate")
	}

	g.beginWrite()
	if _, ok := g.beginRead(); ok {
		t.Fatal("odd sequence must reject readers")
	}
	g.endWrite()

	s2, ok := g.beginRead()
	if !ok {
		t.Fatal("guard must be readable after the write bracket")
	}
	if s2 == s1 {
		t.Fatal("sequence must advance across a write bracket")
	}
	if !g.endRead(s2) {
		t.Fatal("stable window must validate")
	}
	if g.endRead(s1) {
		t.Fatal("stale sequence must not validate")
	}
}

func TestGuardTable_PowerOfTwo(t *testing.T) {
	gt := newGuardTable(1000)
	if len(gt.guards) != 1024 || gt.mask != 1023 {
		t.Fatalf("got count=%d mask=%d", len(gt.guards), gt.mask)
	}
	gt = newGuardTable(0)
	if len(gt.guards) != defaultGuardCount {
		t.Fatalf("default count=%d", len(gt.guards))
	}
}

func TestGuardTable_Aliasing(t *testing.T) {
	gt := newGuardTable(8)
	if gt.at(1) != gt.at(9) || gt.at(1) != gt.at(8193) {
		t.Fatal("slots congruent mod count must share a guard")
	}
	if gt.at(1) == gt.at(2) {
		t.Fatal("distinct residues must not share a guard")
	}
}
