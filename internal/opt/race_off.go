//go:build !race

package opt

// Race_ reports whether the race detector build is active.
const Race_ = false
