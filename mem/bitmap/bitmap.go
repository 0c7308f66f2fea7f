// Package bitmap implements a packed bit array used to track allocation
// state in the frame and virtual-address pools.
package bitmap

import kernel "kernel386"

const (
	wordBits = 32

	// InvalidIndex is returned by FindRun when no run of the requested
	// length and polarity exists within the searched range.
	InvalidIndex = ^uint32(0)
)

// Bitmap is a packed array of bits backed by a caller-supplied []uint32
// buffer. The buffer is never allocated by this package: callers overlay it
// on a fixed memory region (see mem/pagepool) so the type remains usable
// before the kernel heap exists.
type Bitmap struct {
	words []uint32
	limit uint32
}

// Init attaches buf as the bitmap's backing storage. The bit limit defaults
// to the full capacity of buf (len(buf) * 32 bits); callers that need a
// smaller live range should follow with SetLimit.
func (b *Bitmap) Init(buf []uint32) {
	b.words = buf
	b.limit = uint32(len(buf)) * wordBits
}

// BitSize returns the total addressable bit count of the backing buffer,
// independent of the live limit.
func (b *Bitmap) BitSize() uint32 {
	return uint32(len(b.words)) * wordBits
}

// SetLimit restricts the live range of the bitmap to [0, limit). Bits at or
// beyond limit are not touched by SetLimit itself but should be pre-set by
// the caller so allocators never hand them out (see mem/pagepool).
func (b *Bitmap) SetLimit(limit uint32) bool {
	if limit > b.BitSize() {
		return false
	}
	b.limit = limit
	return true
}

// Limit returns the current live bit range.
func (b *Bitmap) Limit() uint32 {
	return b.limit
}

func bitMask(i uint32) uint32 {
	return 1 << (i % wordBits)
}

// Test reports whether bit i equals val. i must be within BitSize(); an
// out-of-range index is a programmer error.
func (b *Bitmap) Test(i uint32, val bool) bool {
	kernel.Assert(i < b.BitSize(), "bitmap: index out of range")
	return (b.words[i/wordBits]&bitMask(i) != 0) == val
}

// Set assigns bit i to val. Indices at or beyond BitSize() are ignored.
func (b *Bitmap) Set(i uint32, val bool) {
	if i >= b.BitSize() {
		return
	}

	if val {
		b.words[i/wordBits] |= bitMask(i)
	} else {
		b.words[i/wordBits] &^= bitMask(i)
	}
}

// SetRange assigns val to the length-wide run of bits starting at i,
// clamped to BitSize(). Whole words are set in one step to keep this cheap
// for pool-sized runs.
func (b *Bitmap) SetRange(i, length uint32, val bool) {
	if i >= b.BitSize() {
		return
	}
	if i+length > b.BitSize() {
		length = b.BitSize() - i
	}

	end := i + length
	for i < end {
		if i%wordBits == 0 && end-i >= wordBits {
			if val {
				b.words[i/wordBits] = ^uint32(0)
			} else {
				b.words[i/wordBits] = 0
			}
			i += wordBits
			continue
		}

		b.Set(i, val)
		i++
	}
}

// Count returns the number of bits equal to val within [0, Limit()).
func (b *Bitmap) Count(val bool) uint32 {
	var (
		full uint32
		num  uint32
	)
	if val {
		full = ^uint32(0)
	}
	empty := ^full

	wholeWords := b.limit / wordBits
	for idx := uint32(0); idx < wholeWords; idx++ {
		switch b.words[idx] {
		case full:
			num += wordBits
		case empty:
		default:
			num += b.countRange(idx*wordBits, wordBits, val)
		}
	}

	if tail := b.limit % wordBits; tail > 0 {
		num += b.countRange(wholeWords*wordBits, tail, val)
	}

	return num
}

func (b *Bitmap) countRange(start, length uint32, val bool) uint32 {
	end := start + length
	if end > b.limit {
		end = b.limit
	}

	var n uint32
	for ; start < end; start++ {
		if b.Test(start, val) {
			n++
		}
	}
	return n
}

// FindRun returns the lowest index of a contiguous length-wide run of val
// within [start, end), or (InvalidIndex, false) if no such run exists. The
// search is clamped to the bitmap's live limit. Whole words matching the
// unwanted polarity are skipped without per-bit inspection.
func (b *Bitmap) FindRun(start, end uint32, val bool, length uint32) (uint32, bool) {
	if end > b.limit {
		end = b.limit
	}

	for start < end {
		wordIdx, ok := b.roughlyFind(start, end, val)
		if !ok {
			return InvalidIndex, false
		}

		if wordIdx*wordBits > start {
			start = wordIdx * wordBits
		}

		scanEnd := (wordIdx+1)*wordBits + length
		if scanEnd > end {
			scanEnd = end
		}

		var (
			runStart uint32
			runLen   uint32
			haveRun  bool
		)

		for ; start < scanEnd; start++ {
			if b.Test(start, val) {
				if !haveRun {
					runStart, haveRun = start, true
				}
				if runLen++; runLen == length {
					return runStart, true
				}
				continue
			}
			haveRun, runLen = false, 0
		}

		start = (wordIdx + 1) * wordBits
	}

	return InvalidIndex, false
}

// roughlyFind returns the index of the first word in [start, end) (given in
// bits) that is not entirely composed of the unwanted polarity, skipping
// uniform words whole to save time.
func (b *Bitmap) roughlyFind(start, end uint32, val bool) (uint32, bool) {
	wordStart := start / wordBits
	wordEnd := (end + wordBits - 1) / wordBits
	if wordStart >= uint32(len(b.words)) {
		return 0, false
	}

	realWords := (b.limit + wordBits - 1) / wordBits
	if wordEnd > realWords {
		wordEnd = realWords
	}

	var full uint32
	if !val {
		full = ^uint32(0)
	}

	for wordStart < wordEnd {
		if b.words[wordStart] != full {
			return wordStart, true
		}
		wordStart++
	}

	return 0, false
}
