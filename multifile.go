package fwfdb

import "sort"

// MultiFile is a virtual concatenation of child views, addressed as a single
// contiguous range: line i of the MultiFile is line (i - offset) of whichever
// child's [offset, offset+child.Len()) range contains i. It is itself a
// Root -- it has no Parent -- so Region/Subset/order_by/index builders work
// over a MultiFile exactly as they do over a single File.
type MultiFile struct {
	children []View
	cum      []int64 // cum[i] = sum of Len() of children[0:i]; len(cum) == len(children)+1
	total    int64
}

// NewMultiFile concatenates children in the given order. All children must
// share a compatible schema (same field names and offsets); this is the
// caller's responsibility to arrange, since schemas are attached by the
// caller when each child File is opened.
func NewMultiFile(children ...View) (*MultiFile, error) {
	if len(children) == 0 {
		return nil, wrapf(ErrSchema, "MultiFile requires at least one child")
	}
	mf := &MultiFile{children: children, cum: make([]int64, len(children)+1)}
	var total int64
	for i, c := range children {
		mf.cum[i] = total
		total += c.Len()
	}
	mf.cum[len(children)] = total
	mf.total = total
	return mf, nil
}

// Len returns the total number of records across all children.
func (mf *MultiFile) Len() int64 { return mf.total }

// Schema returns the first child's schema.
func (mf *MultiFile) Schema() *FileFieldSpecs { return mf.children[0].Schema() }

// Parent implements View: a MultiFile is always a root.
func (mf *MultiFile) Parent() View { return nil }

func (mf *MultiFile) parentIndex(i int64) int64 { return i }

// childFor returns the index of the child containing global index i
// (assumed already validated to [0,Len())), and i's offset within that
// child.
func (mf *MultiFile) childFor(i int64) (childIdx int, local int64) {
	// cum is sorted ascending; find the last entry <= i.
	idx := sort.Search(len(mf.cum), func(k int) bool { return mf.cum[k] > i }) - 1
	return idx, i - mf.cum[idx]
}

// RawLineAt validates i (negative folds to Len()+i) and delegates to
// whichever child covers that global index.
func (mf *MultiFile) RawLineAt(i int64) ([]byte, error) {
	n, err := normalizeIndex(i, mf.total)
	if err != nil {
		return nil, err
	}
	c, local := mf.childFor(n)
	return mf.children[c].RawLineAt(local)
}

// IterLines yields every line across all children, in child order then
// line order within each child.
func (mf *MultiFile) IterLines(yield func(i int64, line []byte) bool) error {
	var i int64
	for _, c := range mf.children {
		stop := false
		if err := c.IterLines(func(_ int64, line []byte) bool {
			if !yield(i, line) {
				stop = true
				return false
			}
			i++
			return true
		}); err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// IterLinesWithField yields only the named field's bytes, in child order
// then line order within each child.
func (mf *MultiFile) IterLinesWithField(name string, yield func(i int64, field []byte) bool) error {
	var i int64
	for _, c := range mf.children {
		stop := false
		if err := c.IterLinesWithField(name, func(_ int64, field []byte) bool {
			if !yield(i, field) {
				stop = true
				return false
			}
			i++
			return true
		}); err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// Close closes every child in reverse order, returning the first error
// encountered (after attempting to close the rest).
func (mf *MultiFile) Close() error {
	var first error
	for i := len(mf.children) - 1; i >= 0; i-- {
		if err := mf.children[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Children returns the constituent views, in concatenation order.
func (mf *MultiFile) Children() []View { return mf.children }
