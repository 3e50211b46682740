package fwfdb

import (
	"bytes"
	"sort"
)

// SortKey is one ordering key for OrderBy: sort by Field's bytes, optionally
// descending. Later keys break ties among earlier ones.
type SortKey struct {
	Field      string
	Descending bool
}

// OrderBy returns a Subset of v with lines reordered by keys, stable
// byte-lexicographic comparison, with original view-local index as the
// final tie-break (so OrderBy is deterministic even with no keys).
func OrderBy(v View, keys ...SortKey) (*Subset, error) {
	n := v.Len()
	indices := make([]int64, n)
	fields := make([][][]byte, len(keys))
	for i := range fields {
		fields[i] = make([][]byte, n)
	}
	schema := v.Schema()
	fieldSpecs := make([]*FieldSpec, len(keys))
	for i, k := range keys {
		fs, ok := schema.Get(k.Field)
		if !ok {
			return nil, wrapf(ErrSchema, "no such field: %q", k.Field)
		}
		fieldSpecs[i] = fs
	}

	var idx int64
	err := v.IterLines(func(i int64, line []byte) bool {
		indices[idx] = i
		for ki, fs := range fieldSpecs {
			cp := make([]byte, fs.Len())
			copy(cp, line[fs.Start:fs.Stop])
			fields[ki][idx] = cp
		}
		idx++
		return true
	})
	if err != nil {
		return nil, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		for ki, k := range keys {
			c := bytes.Compare(fields[ki][ia], fields[ki][ib])
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return indices[ia] < indices[ib]
	})

	sorted := make([]int64, n)
	for i, oi := range order {
		sorted[i] = indices[oi]
	}
	return newSubset(v, sorted), nil
}
