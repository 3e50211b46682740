package fwfdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexTestFile(t *testing.T) *File {
	t.Helper()
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "dept", Opt: FieldSpecOpt{}.WithLen(2)},
		{Name: "name", Opt: FieldSpecOpt{}.WithLen(6)},
	})
	require.NoError(t, err)
	data := []byte(
		"ENalice \n" +
			"HRbob   \n" +
			"ENcarol \n" +
			"HRdave  \n" +
			"ENeve   \n",
	)
	f, err := OpenBytes(data, ffs)
	require.NoError(t, err)
	return f
}

func TestBuildIndexNaiveAndBulkAgree(t *testing.T) {
	f := indexTestFile(t)
	defer f.Close()

	naive, err := BuildIndexNaive(f, "dept")
	require.NoError(t, err)
	bulk, err := BuildIndexBulk(f, "dept")
	require.NoError(t, err)

	assert.Equal(t, naive.Len(), bulk.Len())

	en, ok := naive.Get("EN")
	require.True(t, ok)
	assert.Equal(t, []int64{0, 2, 4}, en.Indices())

	en2, ok := bulk.Get("EN")
	require.True(t, ok)
	assert.Equal(t, []int64{0, 2, 4}, en2.Indices())

	_, ok = naive.Get("XX")
	assert.False(t, ok)
}

func TestBuildIndexKernelBounded(t *testing.T) {
	f := indexTestFile(t)
	defer f.Close()

	idx, err := BuildIndexKernel(f, "dept", ScanBounds{Lower: []byte("HR"), Upper: []byte("HR"), UpperInclusive: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	hr, ok := idx.Get("HR")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 3}, hr.Indices())
}

func TestUniqueIndexLastWriteWins(t *testing.T) {
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "k", Opt: FieldSpecOpt{}.WithLen(1)},
	})
	require.NoError(t, err)
	data := []byte("a\nb\na\n")
	f, err := OpenBytes(data, ffs)
	require.NoError(t, err)
	defer f.Close()

	u, err := BuildUniqueIndexNaive(f, "k")
	require.NoError(t, err)
	l, ok := u.Get("a")
	require.True(t, ok)
	assert.EqualValues(t, 2, l.No)
}

func TestMergeIndexes(t *testing.T) {
	f1 := indexTestFile(t)
	defer f1.Close()
	f2 := indexTestFile(t)
	defer f2.Close()

	mf, err := NewMultiFile(f1, f2)
	require.NoError(t, err)

	idx1, err := BuildIndexBulk(f1, "dept")
	require.NoError(t, err)
	idx2, err := BuildIndexBulk(f2, "dept")
	require.NoError(t, err)

	merged, err := MergeIndexes(mf, IndexMergeInput{Index: idx1, Offset: 0}, IndexMergeInput{Index: idx2, Offset: f1.Len()})
	require.NoError(t, err)

	en, ok := merged.Get("EN")
	require.True(t, ok)
	assert.Equal(t, []int64{0, 2, 4, 5, 7, 9}, en.Indices())

	hr, ok := merged.Get("HR")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 3, 6, 8}, hr.Indices())
}

func TestMergeUniqueIndexes(t *testing.T) {
	f1 := indexTestFile(t)
	defer f1.Close()
	f2 := indexTestFile(t)
	defer f2.Close()

	mf, err := NewMultiFile(f1, f2)
	require.NoError(t, err)

	u1, err := BuildUniqueIndexBulk(f1, "dept")
	require.NoError(t, err)
	u2, err := BuildUniqueIndexBulk(f2, "dept")
	require.NoError(t, err)

	merged := MergeUniqueIndexes(mf, UniqueIndexMergeInput{Index: u1, Offset: 0}, UniqueIndexMergeInput{Index: u2, Offset: f1.Len()})
	l, ok := merged.Get("EN")
	require.True(t, ok)
	assert.EqualValues(t, 9, l.No)
}

func TestUnique(t *testing.T) {
	f := indexTestFile(t)
	defer f.Close()

	s, err := Unique(f, "dept")
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Len())
	assert.Equal(t, []int64{0, 1}, s.Indices())
}
