package othello

import (
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/llxisdsh/othello/internal/opt"
)

// cacheLineSize is the size of a cache line in bytes.
const cacheLineSize = opt.CacheLineSize_

const (
	intSize = 32 << (^uint(0) >> 63) // 32 or 64
)

// nextPowOf2 calculates the smallest power of 2 that is greater than or equal
// to n.
// Compatible with both 32-bit and 64-bit systems.
//
//go:nosplit
func nextPowOf2(n int) int {
	if n <= 0 {
		return 1
	}
	v := n - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	if intSize == 64 {
		v |= v >> 32
	}
	return v + 1
}

// calcParallelism calculates the number of goroutines for parallel processing.
//
// Parameters:
//   - items: Number of items to process.
//   - threshold: Minimum threshold to enable parallel processing.
//   - cpus: number of available CPU cores
//
// Returns:
//   - chunkSz: Number of items processed per goroutine
//   - chunks: Suggested degree of parallelism (number of goroutines).
//
//go:nosplit
func calcParallelism(items, threshold, cpus int) (chunkSz, chunks int) {
	// If the items are too small, use single-threaded processing.
	if items <= threshold {
		return items, 1
	}

	chunks = min(items/threshold, cpus)

	chunkSz = (items + chunks - 1) / chunks

	return chunkSz, chunks
}

// noescape hides a pointer from escape analysis. noescape is
// the identity function, but escape analysis doesn't think the
// output depends on the input.  noescape is inlined and currently
// compiles down to zero instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	//nolint:all
	return unsafe.Pointer(x ^ 0)
}

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

func trySpin(spins *int) bool {
	if runtime_canSpin(*spins) {
		*spins++
		runtime_doSpin()
		return true
	}
	return false
}

func delay(spins *int) {
	if trySpin(spins) {
		return
	}
	*spins = 0
	// time.Sleep with non-zero duration (≈Millisecond level) works
	// effectively as backoff under high concurrency.
	// The 500µs duration is derived from Facebook/folly's implementation:
	// https://github.com/facebook/folly/blob/main/folly/synchronization/detail/Sleeper.h
	time.Sleep(500 * time.Microsecond)
}

// nolint:all
//
//go:linkname runtime_canSpin sync.runtime_canSpin
//goland:noinspection ALL
func runtime_canSpin(i int) bool

// nolint:all
//
//go:linkname runtime_doSpin sync.runtime_doSpin
//goland:noinspection ALL
func runtime_doSpin()

// isTSO_ detects TSO architectures; on TSO, plain reads/writes are safe for
// native word-sized integers
const isTSO_ = !opt.Race_ &&
	(runtime.GOARCH == "amd64" ||
		runtime.GOARCH == "386" ||
		runtime.GOARCH == "s390x")

// loadInt aligned integer load; plain on TSO when width matches,
// otherwise atomic
//
//go:nosplit
func loadInt[T ~uint32 | ~uint64 | ~uintptr](addr *T) T {
	if opt.Race_ {
		if unsafe.Sizeof(T(0)) == 4 {
			return T(atomic.LoadUint32((*uint32)(unsafe.Pointer(addr))))
		} else {
			return T(atomic.LoadUint64((*uint64)(unsafe.Pointer(addr))))
		}
	} else {
		if unsafe.Sizeof(T(0)) == 4 {
			if isTSO_ {
				return *addr
			} else {
				return T(atomic.LoadUint32((*uint32)(unsafe.Pointer(addr))))
			}
		} else {
			if isTSO_ && intSize == 64 {
				return *addr
			} else {
				return T(atomic.LoadUint64((*uint64)(unsafe.Pointer(addr))))
			}
		}
	}
}

// storeInt aligned integer store; plain on TSO when width matches,
// otherwise atomic
//
//go:nosplit
func storeInt[T ~uint32 | ~uint64 | ~uintptr](addr *T, val T) {
	if opt.Race_ {
		if unsafe.Sizeof(T(0)) == 4 {
			atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), uint32(val))
		} else {
			atomic.StoreUint64((*uint64)(unsafe.Pointer(addr)), uint64(val))
		}
	} else {
		if unsafe.Sizeof(T(0)) == 4 {
			if isTSO_ {
				*addr = val
			} else {
				atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), uint32(val))
			}
		} else {
			if isTSO_ && intSize == 64 {
				*addr = val
			} else {
				atomic.StoreUint64((*uint64)(unsafe.Pointer(addr)), uint64(val))
			}
		}
	}
}

// loadIntFast performs a non-atomic read, safe only when the caller holds
// a relevant lock or is within a seqlock read window.
//
//go:nosplit
func loadIntFast[T ~uint32 | ~uint64 | ~uintptr](addr *T) T {
	if opt.Race_ {
		return loadInt(addr)
	} else {
		return *addr
	}
}
