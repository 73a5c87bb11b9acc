package othello

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

type (
	// Hasher64 is the 64-bit keyed hash that places a key: its low 32 bits
	// select the A bucket and its high 32 bits select the B bucket. A control
	// plane must reproduce it bit-for-bit, so the function and seed are fixed
	// per table instance.
	Hasher64 func(ptr unsafe.Pointer, seed uint64) uint64

	// Hasher32 is the auxiliary 32-bit digest hash. The lookup path never
	// consults it; it exists for filter/membership layers stacked above the
	// table.
	Hasher32 func(ptr unsafe.Pointer, seed uint64) uint32
)

// reduce32 maps x (uniform in 2^32) to the range [0, n) using Lemire's
// alternative to modulo reduction:
// http://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
// Instead of x % n, use (x * n) >> 32.
//
//go:nosplit
func reduce32(x, n uint32) uint32 {
	return uint32(uint64(x) * uint64(n) >> 32)
}

// defaultHashers picks hash functions for K: xxhash/xxh3 for strings,
// otherwise Go's built-in seeded map hasher for the type.
func defaultHashers[K comparable]() (Hasher64, Hasher32) {
	switch any(*new(K)).(type) {
	case string:
		return hashString64, hashString32
	default:
		return runtimeHasher64[K](), runtimeHasher32[K]()
	}
}

//go:nosplit
func hashString64(ptr unsafe.Pointer, seed uint64) uint64 {
	h := xxhash.Sum64String(*(*string)(ptr))
	return mix64(h ^ seed*0x9e3779b97f4a7c15)
}

//go:nosplit
func hashString32(ptr unsafe.Pointer, seed uint64) uint32 {
	return uint32(xxh3.HashStringSeed(*(*string)(ptr), seed))
}

// mix64 is the splitmix64 finalizer; it spreads seed entropy over all 64
// bits so both 32-bit halves of the result index independently.
//
//go:nosplit
func mix64(h uint64) uint64 {
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// runtimeHasher64 adapts the built-in map hasher for K to a full 64-bit
// hash. On 32-bit platforms two differently-seeded 32-bit hashes supply
// the two halves.
func runtimeHasher64[K comparable]() Hasher64 {
	h := builtInHasher[K]()
	if intSize == 64 {
		return func(ptr unsafe.Pointer, seed uint64) uint64 {
			return uint64(h(ptr, uintptr(seed)))
		}
	}
	return func(ptr unsafe.Pointer, seed uint64) uint64 {
		lo := uint64(uint32(h(ptr, uintptr(uint32(seed)))))
		hi := uint64(uint32(h(ptr, uintptr(uint32(seed>>32))^0x9e3779b9)))
		return hi<<32 | lo
	}
}

func runtimeHasher32[K comparable]() Hasher32 {
	h := builtInHasher[K]()
	return func(ptr unsafe.Pointer, seed uint64) uint32 {
		return uint32(h(ptr, uintptr(seed^seed>>32)*0x9e3779b1))
	}
}

// builtInHasher gets Go's built-in hash function for K using reflection
// on the runtime map type.
//
// This approach provides direct access to the type-specific function
// without the overhead of switch statements.
//
// Notes:
//   - This implementation relies on Go's internal type representation
//   - It should be verified for compatibility with each Go version upgrade
func builtInHasher[K comparable]() func(unsafe.Pointer, uintptr) uintptr {
	var m map[K]struct{}
	return iTypeOf(m).MapType().Hasher
}

type (
	iTFlag   uint8
	iKind    uint8
	iNameOff int32
)

// iTypeOff is the offset to a type from moduledata.types. See
// resolveTypeOff in runtime.
type iTypeOff int32

type iType struct {
	Size_       uintptr
	PtrBytes    uintptr // number of (prefix) bytes in the type that can contain pointers
	Hash        uint32  // hash of type; avoids computation in hash tables
	TFlag       iTFlag  // extra type information flags
	Align_      uint8   // alignment of variable with this type
	FieldAlign_ uint8   // alignment of struct field with this type
	Kind_       iKind   // enumeration for C
	// function for comparing objects of this type
	// (ptr to object A, ptr to object B) -> ==?
	Equal func(unsafe.Pointer, unsafe.Pointer) bool
	// GCData stores the GC type data for the garbage collector.
	GCData    *byte
	Str       iNameOff // string form
	PtrToThis iTypeOff // type for pointer to this type, may be zero
}

func (t *iType) MapType() *iMapType {
	return (*iMapType)(unsafe.Pointer(t))
}

type iMapType struct {
	iType
	Key   *iType
	Elem  *iType
	Group *iType // internal type representing a slot group
	// function for hashing keys (ptr to key, seed) -> hash
	Hasher func(unsafe.Pointer, uintptr) uintptr
}

func iTypeOf(a any) *iType {
	eface := *(*iEmptyInterface)(unsafe.Pointer(&a))
	// Types are either static (for compiler-created types) or
	// heap-allocated but always reachable (for reflection-created
	// types, held in the central map). So there is no need to
	// escape types. noescape here helps avoid unnecessary escape
	// of a.
	return (*iType)(noescape(unsafe.Pointer(eface.Type)))
}

type iEmptyInterface struct {
	Type *iType
	Data unsafe.Pointer
}
