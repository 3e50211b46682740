// Package postings implements a packed, append-only posting list store: a
// key -> []int64 multimap built once via O(1) appends and then compacted
// into a single flat int64 array, so that a finalized Get is a zero-copy
// slice rather than a map lookup returning a heap-allocated slice per key.
//
// The build-time structure is an arena of postings chained per key, in the
// same spirit as grailbio-bio/fusion/kmer_index.go's farm-hash-sharded
// arena: a 64-bit farm hash selects a bucket, and a short collision chain
// within the bucket disambiguates distinct keys that happen to hash
// together (kmer_index.go tolerates such collisions for its use case; a
// posting store keyed by arbitrary field bytes cannot, so each arena entry
// also carries the literal key for an equality check).
package postings

import (
	"errors"
	"fmt"

	farm "github.com/dgryski/go-farm"
)

// Sentinel errors. A Builder is a self-contained package so it cannot import
// the root fwfdb package (which imports postings); callers translate these
// into fwfdb's own sentinels at the package boundary.
var (
	ErrCapacity     = errors.New("postings: capacity exceeded")
	ErrInvalidState = errors.New("postings: invalid state")
)

func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// entry is one posting in the arena. index 0 is reserved as the
// end-of-chain sentinel, so real entries start at index 1.
type entry struct {
	key    string
	lineno int64
	next   uint32 // arena index of the previous posting in the same hash bucket (possibly another key), 0 = end
}

// Builder accumulates postings for O(1) Append, then compacts into a Store.
type Builder struct {
	buckets map[uint64]uint32 // farm hash -> arena index of most recent entry in that bucket's chain
	arena   []entry           // arena[0] is an unused sentinel
	maxSize int               // 0 = unbounded
	done    bool
}

// NewBuilder creates an empty Builder. maxSize, if positive, bounds the
// total number of postings Append will accept before returning ErrCapacity.
func NewBuilder(maxSize int) *Builder {
	return &Builder{
		buckets: make(map[uint64]uint32),
		arena:   make([]entry, 1), // index 0 reserved
		maxSize: maxSize,
	}
}

// Append records one (key, lineno) posting in O(1) amortized time.
func (b *Builder) Append(key string, lineno int64) error {
	if b.done {
		return wrapf(ErrInvalidState, "Append called after Finalize")
	}
	if b.maxSize > 0 && len(b.arena)-1 >= b.maxSize {
		return wrapf(ErrCapacity, "posting store exceeded maxSize=%d", b.maxSize)
	}
	h := farm.Hash64WithSeed([]byte(key), 0)
	id := uint32(len(b.arena))
	b.arena = append(b.arena, entry{key: key, lineno: lineno, next: b.buckets[h]})
	b.buckets[h] = id
	return nil
}

// Len returns the number of postings appended so far.
func (b *Builder) Len() int { return len(b.arena) - 1 }

// Get walks the bucket chain from the head, same as a construction-time
// lookup must: the arena is not yet compacted, so there is no flat run to
// slice. It returns postings in ascending (original Append) order, matching
// what Get on the Store returned by Finalize would return for the same key.
// ok is false if key was never appended or the Builder has been finalized.
func (b *Builder) Get(key string) (lines []int64, ok bool) {
	if b.done {
		return nil, false
	}
	h := farm.Hash64WithSeed([]byte(key), 0)
	head, ok := b.buckets[h]
	if !ok {
		return nil, false
	}
	for id := head; id != 0; id = b.arena[id].next {
		e := &b.arena[id]
		if e.key == key {
			lines = append(lines, e.lineno)
		}
	}
	if lines == nil {
		return nil, false
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, true
}

// Finalize compacts the arena into a Store and releases the Builder's
// working state. It walks each bucket's chain once, so it runs in O(n)
// total over all postings. A Builder must not be reused after Finalize.
func (b *Builder) Finalize() (*Store, error) {
	if b.done {
		return nil, wrapf(ErrInvalidState, "Finalize called twice")
	}
	b.done = true

	offsets := make(map[string]int, len(b.buckets))
	var data []int64
	// Within one hash bucket, distinct keys' chains are interleaved; split
	// them out before reversing so each key's run is contiguous and in
	// ascending (original append) order.
	runs := make(map[string][]int64)
	order := make([]string, 0, len(b.buckets))
	for _, head := range b.buckets {
		for id := head; id != 0; id = b.arena[id].next {
			e := &b.arena[id]
			if _, ok := runs[e.key]; !ok {
				order = append(order, e.key)
			}
			runs[e.key] = append(runs[e.key], e.lineno)
		}
	}
	for _, key := range order {
		run := runs[key]
		for i, j := 0, len(run)-1; i < j; i, j = i+1, j-1 {
			run[i], run[j] = run[j], run[i]
		}
		offsets[key] = len(data)
		data = append(data, int64(len(run)))
		data = append(data, run...)
	}

	b.arena = nil
	b.buckets = nil
	return &Store{data: data, offsets: offsets}, nil
}

// Store is a finalized, read-only posting store: Get is a zero-copy slice
// into the single backing data array.
type Store struct {
	data    []int64
	offsets map[string]int
}

// Get returns the line numbers posted under key, in ascending order of
// original Append order, or ok=false if key was never appended.
func (s *Store) Get(key string) (lines []int64, ok bool) {
	off, ok := s.offsets[key]
	if !ok {
		return nil, false
	}
	n := int(s.data[off])
	return s.data[off+1 : off+1+n], true
}

// Len returns the number of distinct keys in the store.
func (s *Store) Len() int { return len(s.offsets) }

// Keys returns every distinct key in the store, in no particular order.
func (s *Store) Keys() []string {
	out := make([]string, 0, len(s.offsets))
	for k := range s.offsets {
		out = append(out, k)
	}
	return out
}
