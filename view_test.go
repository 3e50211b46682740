package fwfdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestFile(t *testing.T) *File {
	t.Helper()
	data := []byte(
		"0001aaaaaa\n" +
			"0002bbbbbb\n" +
			"0003cccccc\n" +
			"0004dddddd\n" +
			"0005eeeeee\n",
	)
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)
	return f
}

func TestLineAtNegativeIndex(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	l, err := LineAt(f, -1)
	require.NoError(t, err)
	assert.Equal(t, "0005", l.Str("id"))
	assert.EqualValues(t, 4, l.No)
}

func TestSlice(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	r, err := Slice(f, 1, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 3, r.Len())

	l, err := LineAt(r, 0)
	require.NoError(t, err)
	assert.Equal(t, "0002", l.Str("id"))

	l, err = LineAt(r, -1)
	require.NoError(t, err)
	assert.Equal(t, "0004", l.Str("id"))
}

func TestSliceOfSliceCollapses(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	r1, err := Slice(f, 1, 5)
	require.NoError(t, err)
	r2, err := Slice(r1, 1, 3)
	require.NoError(t, err)

	assert.Same(t, View(f), r2.Parent())
	assert.EqualValues(t, 2, r2.start)
	assert.EqualValues(t, 4, r2.stop)
}

func TestByIndices(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	s, err := ByIndices(f, []int64{4, 0, -2})
	require.NoError(t, err)
	require.EqualValues(t, 3, s.Len())

	l, err := LineAt(s, 0)
	require.NoError(t, err)
	assert.Equal(t, "0005", l.Str("id"))
	l, err = LineAt(s, 2)
	require.NoError(t, err)
	assert.Equal(t, "0004", l.Str("id"))
}

func TestByMask(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	s := ByMask(f, []bool{true, false, true, false, true})
	assert.EqualValues(t, 3, s.Len())
	var ids []string
	require.NoError(t, Iter(s, func(l Line) bool {
		ids = append(ids, l.Str("id"))
		return true
	}))
	assert.Equal(t, []string{"0001", "0003", "0005"}, ids)
}

func TestRootThroughRegionAndSubset(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	r, err := Slice(f, 2, 5) // view-local 0 == file-local 2
	require.NoError(t, err)
	s, err := ByIndices(r, []int64{1}) // view-local 0 == r-local 1 == file-local 3
	require.NoError(t, err)

	rootView, idx := root(s, 0, nil)
	assert.Same(t, f, rootView)
	assert.EqualValues(t, 3, idx)
}
