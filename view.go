package fwfdb

// View is the shared capability set of every node in the view hierarchy:
// Root (File or MultiFile), Region (contiguous range on a parent), and
// Subset (arbitrary index list into a parent). There is no inheritance --
// Region and Subset hold an explicit Parent() and translate view-local
// indices into parent-space indices; a Root's Parent() is nil.
type View interface {
	// Len returns the number of records addressable through this view.
	Len() int64

	// Schema returns the field layout shared by every line in this view.
	Schema() *FileFieldSpecs

	// RawLineAt validates i (negative folds to Len()+i) and returns the raw
	// record bytes for view-local line i.
	RawLineAt(i int64) ([]byte, error)

	// IterLines calls yield once per line in ascending view-local order,
	// stopping early if yield returns false.
	IterLines(yield func(i int64, line []byte) bool) error

	// IterLinesWithField calls yield once per line with only the named
	// field's bytes.
	IterLinesWithField(name string, yield func(i int64, field []byte) bool) error

	// Parent returns the view this one is defined over, or nil if this is a
	// Root.
	Parent() View

	// parentIndex translates a view-local index, already known to be in
	// [0,Len()), into the corresponding index in Parent(). Never validates;
	// roots implement it as the identity function but are never called
	// (Parent() is nil for roots).
	parentIndex(i int64) int64

	// Close releases resources owned by this view's root. Non-root views
	// forward to their parent.
	Close() error
}

// normalizeIndex folds a negative index to length+i and validates the
// result is in [0,length). This is the one bounds-check every public
// indexing entry point performs; internal recursion through parentIndex
// does not re-validate.
func normalizeIndex(i, length int64) (int64, error) {
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, wrapf(ErrOutOfBounds, "index %d out of range [0,%d)", i, length)
	}
	return i, nil
}

// normalizeBound folds and clamps a slice endpoint: nil (represented by the
// sentinel default) maps to default, negative maps to length+i, and the
// result must land in [0,length].
func normalizeBound(i, def, length int64) (int64, error) {
	if i == boundUnset {
		return def, nil
	}
	if i < 0 {
		i += length
	}
	if i < 0 || i > length {
		return 0, wrapf(ErrOutOfBounds, "slice endpoint %d out of range [0,%d]", i, length)
	}
	return i, nil
}

// boundUnset is the sentinel passed to Slice for an omitted start/stop.
const boundUnset int64 = -1 << 62

// root walks the parent chain from v, applying parentIndex at each hop,
// until it reaches a view with a nil Parent() (or stopView, if given and
// reached first). It never validates bounds -- the caller must already know
// i is valid in v's index space. This underpins "where does this line live
// in the file?" queries (spec.md §4.3 "root(index, stop_view?)").
func root(v View, i int64, stopView View) (View, int64) {
	for v != stopView {
		p := v.Parent()
		if p == nil {
			return v, i
		}
		i = v.parentIndex(i)
		v = p
	}
	return v, i
}

// LineAt returns the Line for view-local index i (negative folds to
// Len()+i), validating bounds at this boundary.
func LineAt(v View, i int64) (Line, error) {
	raw, err := v.RawLineAt(i)
	if err != nil {
		return Line{}, err
	}
	idx := i
	if idx < 0 {
		idx += v.Len()
	}
	return Line{View: v, No: idx, Raw: raw}, nil
}

// Slice returns a Region over v spanning the normalized half-open range
// [start,stop). Pass boundUnset (-1<<62) to default start to 0 or stop to
// v.Len().
func Slice(v View, start, stop int64) (*Region, error) {
	a, err := normalizeBound(start, 0, v.Len())
	if err != nil {
		return nil, err
	}
	b, err := normalizeBound(stop, v.Len(), v.Len())
	if err != nil {
		return nil, err
	}
	if a > b {
		return nil, wrapf(ErrOutOfBounds, "slice start %d > stop %d", a, b)
	}
	return newRegion(v, a, b), nil
}

// SliceAll is shorthand for Slice(v, 0, v.Len()).
func SliceAll(v View) *Region { return newRegion(v, 0, v.Len()) }

// ByIndices returns a Subset over v selecting the given view-local indices
// (negative entries fold to Len()+i; each is validated).
func ByIndices(v View, indices []int64) (*Subset, error) {
	out := make([]int64, len(indices))
	for i, idx := range indices {
		n, err := normalizeIndex(idx, v.Len())
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return newSubset(v, out), nil
}

// ByMask returns a Subset of v containing the indices where mask is true.
// A mask shorter than v.Len() implies false for the remaining positions.
func ByMask(v View, mask []bool) *Subset {
	var indices []int64
	for i, b := range mask {
		if b {
			indices = append(indices, int64(i))
		}
	}
	return newSubset(v, indices)
}

// Iter returns the Lines of v in ascending order via a callback, stopping
// early if yield returns false.
func Iter(v View, yield func(Line) bool) error {
	return v.IterLines(func(i int64, raw []byte) bool {
		return yield(Line{View: v, No: i, Raw: raw})
	})
}
