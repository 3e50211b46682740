package fwfdb

// Subset is an arbitrary, ordered list of view-local indices into a parent
// View -- the result of a filter, an order_by, or a bit-mask selection.
// Unlike Region, a Subset is never collapsed against a parent Subset: that
// would require recomposing two index lists, which this package leaves to
// the caller (compose filters as predicates instead of chaining Subsets).
type Subset struct {
	parent  View
	indices []int64 // in parent's index space
}

func newSubset(parent View, indices []int64) *Subset {
	return &Subset{parent: parent, indices: indices}
}

// Len returns the number of records in the subset.
func (s *Subset) Len() int64 { return int64(len(s.indices)) }

// Schema returns the parent's schema.
func (s *Subset) Schema() *FileFieldSpecs { return s.parent.Schema() }

// Parent returns the view this Subset was selected from.
func (s *Subset) Parent() View { return s.parent }

// parentIndex translates subset-local i (assumed already in [0,Len())) to
// the parent's index space.
func (s *Subset) parentIndex(i int64) int64 { return s.indices[i] }

// RawLineAt validates i (negative folds to Len()+i) and delegates to the
// parent at the selected index.
func (s *Subset) RawLineAt(i int64) ([]byte, error) {
	n, err := normalizeIndex(i, s.Len())
	if err != nil {
		return nil, err
	}
	return s.parent.RawLineAt(s.indices[n])
}

// IterLines yields every line in the subset in selection order.
func (s *Subset) IterLines(yield func(i int64, line []byte) bool) error {
	for i, pi := range s.indices {
		line, err := s.parent.RawLineAt(pi)
		if err != nil {
			return err
		}
		if !yield(int64(i), line) {
			break
		}
	}
	return nil
}

// IterLinesWithField yields only the named field's bytes per line, in
// selection order.
func (s *Subset) IterLinesWithField(name string, yield func(i int64, field []byte) bool) error {
	fs, ok := s.parent.Schema().Get(name)
	if !ok {
		return wrapf(ErrSchema, "no such field: %q", name)
	}
	for i, pi := range s.indices {
		line, err := s.parent.RawLineAt(pi)
		if err != nil {
			return err
		}
		if !yield(int64(i), line[fs.Start:fs.Stop]) {
			break
		}
	}
	return nil
}

// Close forwards to the parent (and ultimately to the owning root).
func (s *Subset) Close() error { return s.parent.Close() }

// Indices returns the selected parent-space indices, in selection order.
// The caller must not modify the returned slice.
func (s *Subset) Indices() []int64 { return s.indices }
