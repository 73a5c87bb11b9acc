package othello

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/llxisdsh/pb"
	"golang.org/x/sync/errgroup"
)

// Mismatch records one key whose lookup disagrees with the control
// plane's answer.
type Mismatch struct {
	Got  uint64
	Want uint64
}

// verifyChunk is the minimum number of keys per goroutine before
// verification fans out.
const verifyChunk = 4096

// Verify re-runs Lookup for every key the control plane considers
// inserted and cross-checks the result against want. It exists to catch
// construction and sync bugs right after an import; it is not part of
// the runtime contract and its cost is linear in the key count.
//
// Verification runs concurrently with itself but assumes no concurrent
// mutation of the table; run it before publishing the table or while the
// control plane is quiescent.
func (d *DataPlane[K]) Verify(keys []K, want func(K) uint64) error {
	if len(keys) == 0 {
		return nil
	}

	var bad pb.MapOf[K, Mismatch]
	chunkSz, chunks := calcParallelism(
		len(keys), verifyChunk, runtime.GOMAXPROCS(0))

	var g errgroup.Group
	for c := range chunks {
		lo := c * chunkSz
		hi := min(lo+chunkSz, len(keys))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for _, k := range keys[lo:hi] {
				got, _ := d.Lookup(k)
				if w := want(k); got != w {
					bad.Store(k, Mismatch{Got: got, Want: w})
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	n := bad.Size()
	if n == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "othello: verification failed for %d of %d keys:", n, len(keys))
	shown := 0
	bad.Range(func(k K, m Mismatch) bool {
		fmt.Fprintf(&sb, " %v got=%d want=%d;", k, m.Got, m.Want)
		shown++
		return shown < 3
	})
	if n > shown {
		fmt.Fprintf(&sb, " ...")
	}
	return fmt.Errorf("%s", sb.String())
}
