//go:build race

package opt

// Race_ under the race detector: seqlock guards degrade to reader-writer
// locks and word access becomes atomic, so race reports stay meaningful.
const Race_ = true
