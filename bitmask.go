package fwfdb

import (
	"github.com/grailbio/base/bitset"
	"github.com/grailbio/base/simd"
)

// bitsPerWord is the number of bits packed into one mask word.
const bitsPerWord = simd.BitsPerWord

// BitMask is a linear (non-circular) bitmap over [0,n) line numbers, for
// accumulating a boolean predicate result before materializing it as a
// Subset. ByMask does not use it; it builds its Subset from a []bool. It is circular.Bitmap's row structure with the wraparound and the
// position-tracking fields stripped out: fwfdb masks are always scanned
// once, start to finish, over a known-size view.
type BitMask struct {
	words []uintptr
	n     int64
}

// NewBitMask allocates a mask covering n line numbers, all initially clear.
func NewBitMask(n int64) *BitMask {
	nWords := (n + int64(bitsPerWord) - 1) / int64(bitsPerWord)
	if nWords == 0 {
		nWords = 1
	}
	return &BitMask{words: make([]uintptr, nWords), n: n}
}

// Set marks line i as selected.
func (m *BitMask) Set(i int64) {
	wordIdx := i / int64(bitsPerWord)
	bit := uint(i % int64(bitsPerWord))
	m.words[wordIdx] |= uintptr(1) << bit
}

// Test reports whether line i is selected.
func (m *BitMask) Test(i int64) bool {
	return bitset.Test(m.words, int(i))
}

// Len returns the number of line numbers the mask covers.
func (m *BitMask) Len() int64 { return m.n }

// Indices returns the selected line numbers in ascending order, skipping
// zero words wholesale rather than testing every bit.
func (m *BitMask) Indices() []int64 {
	var out []int64
	for w, word := range m.words {
		if word == 0 {
			continue
		}
		base := int64(w) * int64(bitsPerWord)
		for word != 0 {
			bit := trailingZeros(word)
			idx := base + int64(bit)
			if idx >= m.n {
				break
			}
			out = append(out, idx)
			word &^= uintptr(1) << uint(bit)
		}
	}
	return out
}

// Count returns the number of set bits.
func (m *BitMask) Count() int64 {
	var n int64
	for _, word := range m.words {
		for word != 0 {
			word &= word - 1
			n++
		}
	}
	return n
}

func trailingZeros(w uintptr) int {
	n := 0
	for w&1 == 0 {
		w >>= 1
		n++
	}
	return n
}
