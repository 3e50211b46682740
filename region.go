package fwfdb

// Region is a contiguous, half-open [start,stop) range of view-local indices
// on a parent View. Region(Region(v, ...), ...) collapses to a single
// Region directly on v by composing offsets, rather than chaining
// wrapper layers (spec.md invariant: nested Region never grows the chain).
type Region struct {
	parent View
	start  int64 // inclusive, in parent's index space
	stop   int64 // exclusive, in parent's index space
}

// newRegion builds a Region over parent's [start,stop), collapsing one level
// if parent is itself a Region.
func newRegion(parent View, start, stop int64) *Region {
	if p, ok := parent.(*Region); ok {
		return &Region{parent: p.parent, start: p.start + start, stop: p.start + stop}
	}
	return &Region{parent: parent, start: start, stop: stop}
}

// Len returns the number of records in the region.
func (r *Region) Len() int64 { return r.stop - r.start }

// Schema returns the parent's schema (a Region never changes field layout).
func (r *Region) Schema() *FileFieldSpecs { return r.parent.Schema() }

// Parent returns the view this Region was sliced from.
func (r *Region) Parent() View { return r.parent }

// parentIndex translates region-local i (assumed already in [0,Len())) to
// the parent's index space.
func (r *Region) parentIndex(i int64) int64 { return r.start + i }

// RawLineAt validates i (negative folds to Len()+i) and delegates to the
// parent at the translated index.
func (r *Region) RawLineAt(i int64) ([]byte, error) {
	n, err := normalizeIndex(i, r.Len())
	if err != nil {
		return nil, err
	}
	return r.parent.RawLineAt(r.start + n)
}

// IterLines yields every line in the region in ascending order. Random
// access through the parent keeps this O(Len()) regardless of where the
// region falls within the parent's index space.
func (r *Region) IterLines(yield func(i int64, line []byte) bool) error {
	for i := int64(0); i < r.Len(); i++ {
		line, err := r.parent.RawLineAt(r.start + i)
		if err != nil {
			return err
		}
		if !yield(i, line) {
			break
		}
	}
	return nil
}

// IterLinesWithField yields only the named field's bytes per line, in
// ascending order.
func (r *Region) IterLinesWithField(name string, yield func(i int64, field []byte) bool) error {
	fs, ok := r.parent.Schema().Get(name)
	if !ok {
		return wrapf(ErrSchema, "no such field: %q", name)
	}
	for i := int64(0); i < r.Len(); i++ {
		line, err := r.parent.RawLineAt(r.start + i)
		if err != nil {
			return err
		}
		if !yield(i, line[fs.Start:fs.Stop]) {
			break
		}
	}
	return nil
}

// Close forwards to the parent (and ultimately to the owning root).
func (r *Region) Close() error { return r.parent.Close() }
