package othello

import (
	"fmt"
)

// fieldStore is a flat array of fixed-width bit fields packed into
// consecutive uint64 words. Each of the `slots` fields is `width` bits
// wide and may straddle a word boundary; the low ctlBits of a field are
// the control sub-field, the valBits above them are the value sub-field.
//
// Width and bounds are validated once at construction; accessors assume
// idx < slots and mask values to the field width instead of checking.
//
// Concurrency: accessors do not fence. Readers must call get/getValue
// inside a guard read window, writers inside a guard write bracket.
// Word access goes through loadInt/storeInt so it is plain on TSO and
// atomic on weak memory models and under the race detector.
type fieldStore struct {
	words   []uint64
	slots   uint32
	width   uint8 // valBits + ctlBits; <= 64
	valBits uint8
	ctlBits uint8
	mask    uint64 // low width bits
	valMask uint64 // low valBits bits
	ctlMask uint64 // low ctlBits bits
}

// lowMask returns a mask with the low n bits set.
//
//go:nosplit
func lowMask(n uint8) uint64 {
	if n == 0 {
		return 0
	}
	return ^uint64(0) >> (64 - n)
}

// fieldWords returns the number of uint64 words needed to pack
// slots fields of the given width.
//
//go:nosplit
func fieldWords(slots uint32, width uint8) int {
	return int((uint64(slots)*uint64(width) + 63) >> 6)
}

func newFieldStore(slots uint32, valBits, ctlBits uint8) (fieldStore, error) {
	w := uint(valBits) + uint(ctlBits)
	if w > 64 {
		return fieldStore{}, fmt.Errorf(
			"othello: slot width %d exceeds 64 bits (value %d + control %d)",
			w, valBits, ctlBits)
	}
	width := uint8(w)
	return fieldStore{
		words:   make([]uint64, fieldWords(slots, width)),
		slots:   slots,
		width:   width,
		valBits: valBits,
		ctlBits: ctlBits,
		mask:    lowMask(width),
		valMask: lowMask(valBits),
		ctlMask: lowMask(ctlBits),
	}, nil
}

// getBits reads a field of the given width at absolute bit offset i,
// merging the high part from the next word when the field straddles.
//
//go:nosplit
func (s *fieldStore) getBits(i uint64, width uint, mask uint64) uint64 {
	w := int(i >> 6)
	off := uint(i & 63)
	v := loadInt(&s.words[w]) >> off
	if off+width > 64 {
		v |= loadInt(&s.words[w+1]) << (64 - off)
	}
	return v & mask
}

// setBits writes the low `width` bits of v at absolute bit offset i.
// Caller must hold the covering guard's write bracket.
//
//go:nosplit
func (s *fieldStore) setBits(i uint64, width uint, mask uint64, v uint64) {
	v &= mask
	w := int(i >> 6)
	off := uint(i & 63)
	lo := loadIntFast(&s.words[w])
	storeInt(&s.words[w], lo&^(mask<<off)|v<<off)
	if off+width > 64 {
		// off+width > 64 implies off > 0, so 64-off is in [1, 63].
		hi := loadIntFast(&s.words[w+1])
		storeInt(&s.words[w+1], hi&^(mask>>(64-off))|v>>(64-off))
	}
}

// get returns the full width-bit content of slot idx.
//
//go:nosplit
func (s *fieldStore) get(idx uint32) uint64 {
	if s.width == 0 {
		return 0
	}
	return s.getBits(uint64(idx)*uint64(s.width), uint(s.width), s.mask)
}

// set overwrites the full width-bit content of slot idx.
//
//go:nosplit
func (s *fieldStore) set(idx uint32, v uint64) {
	if s.width == 0 {
		return
	}
	s.setBits(uint64(idx)*uint64(s.width), uint(s.width), s.mask, v)
}

// getValue returns the value sub-field of slot idx, skipping the low
// ctlBits control bits.
//
//go:nosplit
func (s *fieldStore) getValue(idx uint32) uint64 {
	if s.valBits == 0 {
		return 0
	}
	i := uint64(idx)*uint64(s.width) + uint64(s.ctlBits)
	return s.getBits(i, uint(s.valBits), s.valMask)
}

// setValue overwrites only the value sub-field of slot idx, leaving the
// control sub-field untouched.
//
//go:nosplit
func (s *fieldStore) setValue(idx uint32, v uint64) {
	if s.valBits == 0 {
		return
	}
	i := uint64(idx)*uint64(s.width) + uint64(s.ctlBits)
	s.setBits(i, uint(s.valBits), s.valMask, v)
}

// byteSize reports the packed array size in bytes.
//
//go:nosplit
func (s *fieldStore) byteSize() uint64 {
	return uint64(len(s.words)) * 8
}
