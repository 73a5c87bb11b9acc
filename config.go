package othello

import (
	"unsafe"
)

// Config defines configurable options for table construction.
// All fields are optional; zero values select the built-in behavior.
type Config struct {
	// keyHash overrides the 64-bit placement hash.
	// If nil, the built-in hash function for the key type will be used.
	// Control plane and data plane must agree on it exactly, or the XOR
	// reconstruction breaks for every key.
	keyHash Hasher64

	// digestHash overrides the auxiliary 32-bit digest hash.
	digestHash Hasher32

	// guardCount sets the number of aliased sequence guards.
	// Rounded up to a power of 2; defaults to defaultGuardCount.
	// Fewer guards cost less memory but cause more spurious reader
	// retries, since unrelated slots share a guard.
	guardCount int

	// touchCount enables the per-slot access counter carried in the
	// control sub-field. Only meaningful when the control sub-field is
	// non-empty. When enabled, every successful lookup increments the
	// control bits of both touched slots, which makes lookups writers.
	touchCount    bool
	touchCountSet bool
}

// WithGuardCount configures the size of the aliased guard array.
// The count is treated as a minimum and rounded up to the next power
// of 2. If n is zero or negative, the value is ignored.
func WithGuardCount(n int) func(*Config) {
	return func(c *Config) {
		if n > 0 {
			c.guardCount = n
		}
	}
}

// WithKeyHasher sets a custom 64-bit key hashing function for the table.
//
// Parameters:
//   - keyHash: hash function taking a key and a seed, returning the
//     64-bit placement hash. Pass nil to keep the built-in hasher.
//
// Use cases:
//   - Reproducing a control plane's hash exactly across processes
//   - Custom hashing for complex key types
func WithKeyHasher[K comparable](
	keyHash func(key K, seed uint64) uint64,
) func(*Config) {
	return func(c *Config) {
		if keyHash != nil {
			c.keyHash = func(ptr unsafe.Pointer, seed uint64) uint64 {
				return keyHash(*(*K)(ptr), seed)
			}
		}
	}
}

// WithDigestHasher sets a custom 32-bit digest hashing function.
// The digest is exposed to filter layers via [DataPlane.Digest] and is
// never consulted by Lookup itself.
func WithDigestHasher[K comparable](
	digestHash func(key K, seed uint64) uint32,
) func(*Config) {
	return func(c *Config) {
		if digestHash != nil {
			c.digestHash = func(ptr unsafe.Pointer, seed uint64) uint32 {
				return digestHash(*(*K)(ptr), seed)
			}
		}
	}
}

// WithTouchCount enables or disables the per-slot access counter kept in
// the control sub-field. It defaults to on when the table carries control
// bits. Disabling it makes Lookup strictly read-only at the memory level.
func WithTouchCount(on bool) func(*Config) {
	return func(c *Config) {
		c.touchCount = on
		c.touchCountSet = true
	}
}
