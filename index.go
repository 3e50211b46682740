package fwfdb

import (
	"errors"

	"github.com/grailbio/fwfdb/postings"
)

func translatePostingsErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, postings.ErrCapacity):
		return wrapf(ErrCapacity, "%v", err)
	case errors.Is(err, postings.ErrInvalidState):
		return wrapf(ErrInvalidState, "%v", err)
	default:
		return err
	}
}

// Index is a multi-valued field index: one key maps to every line whose
// field equals it, in the order they were appended. Backed by a finalized
// postings.Store, whose lookup is a zero-copy slice into the compacted
// posting array; Get copies that slice into the Subset it returns.
type Index struct {
	view  View
	store *postings.Store
}

// Get returns a Subset of the lines keyed by key, or ok=false if key was
// never indexed.
func (idx *Index) Get(key string) (*Subset, bool) {
	lines, ok := idx.store.Get(key)
	if !ok {
		return nil, false
	}
	cp := make([]int64, len(lines))
	copy(cp, lines)
	return newSubset(idx.view, cp), true
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int { return idx.store.Len() }

// Keys returns every distinct key, in no particular order.
func (idx *Index) Keys() []string { return idx.store.Keys() }

// IndexBuilder accumulates postings for an Index across one or more Add
// calls before a single Finalize, so that consecutive invocations over a
// MultiFile's child views can populate one container with globally unique
// line numbers: call Add once per child, passing that child's cumulative
// offset, then Finalize once against the MultiFile itself.
type IndexBuilder struct {
	view View
	b    *postings.Builder
}

// NewIndexBuilder creates an IndexBuilder that will finalize into an Index
// addressed against view.
func NewIndexBuilder(view View) *IndexBuilder {
	return &IndexBuilder{view: view, b: postings.NewBuilder(0)}
}

// AddNaive appends v's postings on field, one Line at a time, with each
// line number shifted by offset before insertion.
func (ib *IndexBuilder) AddNaive(v View, field string, offset int64) error {
	if _, ok := v.Schema().Get(field); !ok {
		return wrapf(ErrSchema, "no such field: %q", field)
	}
	var appendErr error
	if err := Iter(v, func(l Line) bool {
		if err := ib.b.Append(string(l.Field(field)), offset+l.No); err != nil {
			appendErr = translatePostingsErr(err)
			return false
		}
		return true
	}); err != nil {
		return err
	}
	return appendErr
}

// AddBulk appends v's postings on field via the fast IterLinesWithField
// column read, with each line number shifted by offset before insertion.
func (ib *IndexBuilder) AddBulk(v View, field string, offset int64) error {
	if _, ok := v.Schema().Get(field); !ok {
		return wrapf(ErrSchema, "no such field: %q", field)
	}
	var appendErr error
	if err := v.IterLinesWithField(field, func(i int64, val []byte) bool {
		if err := ib.b.Append(string(val), offset+i); err != nil {
			appendErr = translatePostingsErr(err)
			return false
		}
		return true
	}); err != nil {
		return err
	}
	return appendErr
}

// AddKernel appends v's postings on field through the scan kernel, bounded
// to bounds, with each line number shifted by offset before insertion.
func (ib *IndexBuilder) AddKernel(v View, field string, bounds ScanBounds, offset int64, progress ScanProgress) error {
	return ScanKeys(v, field, bounds, offset, progress, func(lineno int64, key []byte) error {
		return translatePostingsErr(ib.b.Append(string(key), lineno))
	})
}

// Finalize compacts every Add call's postings into an Index. The builder
// must not be reused afterward.
func (ib *IndexBuilder) Finalize() (*Index, error) {
	store, err := ib.b.Finalize()
	if err != nil {
		return nil, translatePostingsErr(err)
	}
	return &Index{view: ib.view, store: store}, nil
}

// BuildIndexNaive builds an Index by iterating v one Line at a time --
// the simplest strategy. Keys are the field's raw bytes; no decoding or key
// transformation is applied.
func BuildIndexNaive(v View, field string) (*Index, error) {
	ib := NewIndexBuilder(v)
	if err := ib.AddNaive(v, field, 0); err != nil {
		return nil, err
	}
	return ib.Finalize()
}

// BuildIndexBulk builds an Index via the fast IterLinesWithField column
// read, skipping per-line Line construction entirely.
func BuildIndexBulk(v View, field string) (*Index, error) {
	ib := NewIndexBuilder(v)
	if err := ib.AddBulk(v, field, 0); err != nil {
		return nil, err
	}
	return ib.Finalize()
}

// BuildIndexKernel builds an Index through the scan kernel, so only records
// whose key falls within bounds are indexed. Every record of v is still
// scanned; records outside bounds are skipped, not avoided.
func BuildIndexKernel(v View, field string, bounds ScanBounds, progress ScanProgress) (*Index, error) {
	ib := NewIndexBuilder(v)
	if err := ib.AddKernel(v, field, bounds, 0, progress); err != nil {
		return nil, err
	}
	return ib.Finalize()
}

// IndexMergeInput pairs an Index built against one child view with the
// offset that expresses its line numbers in the merged view's index space
// (typically the MultiFile cumulative offset of the child it was built
// from).
type IndexMergeInput struct {
	Index  *Index
	Offset int64
}

// MergeIndexes combines the postings of multiple Indexes (typically one per
// file of a MultiFile) into a single Index addressed against view. Each
// input's line numbers are rebased by its Offset before merging, so callers
// never need to pre-rebase an Index themselves.
func MergeIndexes(view View, inputs ...IndexMergeInput) (*Index, error) {
	ib := NewIndexBuilder(view)
	for _, in := range inputs {
		for _, key := range in.Index.store.Keys() {
			lines, _ := in.Index.store.Get(key)
			for _, ln := range lines {
				if err := ib.b.Append(key, in.Offset+ln); err != nil {
					return nil, translatePostingsErr(err)
				}
			}
		}
	}
	return ib.Finalize()
}

// UniqueIndex is a single-valued field index: last write wins when the same
// key appears on more than one line.
type UniqueIndex struct {
	view View
	data map[string]int64
}

// Get returns the Line keyed by key, or ok=false if key was never indexed.
func (u *UniqueIndex) Get(key string) (Line, bool) {
	i, ok := u.data[key]
	if !ok {
		return Line{}, false
	}
	l, err := LineAt(u.view, i)
	if err != nil {
		return Line{}, false
	}
	return l, true
}

// Len returns the number of distinct keys.
func (u *UniqueIndex) Len() int { return len(u.data) }

// Keys returns every distinct key, in no particular order.
func (u *UniqueIndex) Keys() []string {
	out := make([]string, 0, len(u.data))
	for k := range u.data {
		out = append(out, k)
	}
	return out
}

// UniqueIndexBuilder accumulates a UniqueIndex's entries across one or more
// Add calls before a single Finalize, the same incremental, offset-aware
// shape as IndexBuilder.
type UniqueIndexBuilder struct {
	view View
	data map[string]int64
}

// NewUniqueIndexBuilder creates a UniqueIndexBuilder that will finalize into
// a UniqueIndex addressed against view.
func NewUniqueIndexBuilder(view View) *UniqueIndexBuilder {
	return &UniqueIndexBuilder{view: view, data: make(map[string]int64)}
}

// AddNaive inserts v's entries on field, one Line at a time, last write
// wins, with each line number shifted by offset before insertion.
func (ub *UniqueIndexBuilder) AddNaive(v View, field string, offset int64) error {
	if _, ok := v.Schema().Get(field); !ok {
		return wrapf(ErrSchema, "no such field: %q", field)
	}
	return Iter(v, func(l Line) bool {
		ub.data[string(l.Field(field))] = offset + l.No
		return true
	})
}

// AddBulk inserts v's entries on field via the fast column read, last write
// wins, with each line number shifted by offset before insertion.
func (ub *UniqueIndexBuilder) AddBulk(v View, field string, offset int64) error {
	if _, ok := v.Schema().Get(field); !ok {
		return wrapf(ErrSchema, "no such field: %q", field)
	}
	return v.IterLinesWithField(field, func(i int64, val []byte) bool {
		ub.data[string(val)] = offset + i
		return true
	})
}

// Finalize returns the accumulated UniqueIndex.
func (ub *UniqueIndexBuilder) Finalize() *UniqueIndex {
	return &UniqueIndex{view: ub.view, data: ub.data}
}

// BuildUniqueIndexNaive builds a UniqueIndex by iterating v one Line at a
// time, last write wins.
func BuildUniqueIndexNaive(v View, field string) (*UniqueIndex, error) {
	ub := NewUniqueIndexBuilder(v)
	if err := ub.AddNaive(v, field, 0); err != nil {
		return nil, err
	}
	return ub.Finalize(), nil
}

// BuildUniqueIndexBulk builds a UniqueIndex via the fast column read, last
// write wins.
func BuildUniqueIndexBulk(v View, field string) (*UniqueIndex, error) {
	ub := NewUniqueIndexBuilder(v)
	if err := ub.AddBulk(v, field, 0); err != nil {
		return nil, err
	}
	return ub.Finalize(), nil
}

// UniqueIndexMergeInput pairs a UniqueIndex built against one child view
// with the offset that expresses its line numbers in the merged view's
// index space, the UniqueIndex counterpart of IndexMergeInput.
type UniqueIndexMergeInput struct {
	Index  *UniqueIndex
	Offset int64
}

// MergeUniqueIndexes combines multiple UniqueIndexes in order, last write
// wins across inputs (an earlier index's key is overwritten by a later
// index's same key). Each input's line numbers are rebased by its Offset
// before merging.
func MergeUniqueIndexes(view View, inputs ...UniqueIndexMergeInput) *UniqueIndex {
	data := make(map[string]int64)
	for _, in := range inputs {
		for k, v := range in.Index.data {
			data[k] = in.Offset + v
		}
	}
	return &UniqueIndex{view: view, data: data}
}

// Unique returns a Subset of v containing only the first line seen for each
// distinct combination of fields' values (declaration order of fields
// determines tuple composition, not comparison order).
func Unique(v View, fields ...string) (*Subset, error) {
	for _, f := range fields {
		if _, ok := v.Schema().Get(f); !ok {
			return nil, wrapf(ErrSchema, "no such field: %q", f)
		}
	}
	seen := make(map[string]bool)
	var indices []int64
	err := Iter(v, func(l Line) bool {
		var key []byte
		for _, f := range fields {
			key = append(key, l.Field(f)...)
			key = append(key, 0)
		}
		k := string(key)
		if !seen[k] {
			seen[k] = true
			indices = append(indices, l.No)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return newSubset(v, indices), nil
}
