package fwfdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldSpecShapes(t *testing.T) {
	fs, err := NewFieldSpec("id", 10, FieldSpecOpt{}.WithLen(8), nil)
	require.NoError(t, err)
	assert.Equal(t, 10, fs.Start)
	assert.Equal(t, 18, fs.Stop)

	fs, err = NewFieldSpec("id", 0, FieldSpecOpt{}.WithStart(5).WithLen(4), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, fs.Start)
	assert.Equal(t, 9, fs.Stop)

	fs, err = NewFieldSpec("id", 0, FieldSpecOpt{}.WithStop(20).WithLen(4), nil)
	require.NoError(t, err)
	assert.Equal(t, 16, fs.Start)
	assert.Equal(t, 20, fs.Stop)

	fs, err = NewFieldSpec("id", 0, FieldSpecOpt{}.WithStart(3).WithStop(9), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, fs.Start)
	assert.Equal(t, 9, fs.Stop)

	fs, err = NewFieldSpec("id", 0, FieldSpecOpt{}.WithSlice(2, 6), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, fs.Start)
	assert.Equal(t, 6, fs.Stop)
}

func TestNewFieldSpecConflicts(t *testing.T) {
	_, err := NewFieldSpec("id", 0, FieldSpecOpt{}.WithStart(1).WithStop(5).WithLen(4), nil)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = NewFieldSpec("id", 0, FieldSpecOpt{}, nil)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestNewFieldSpecLengthBounds(t *testing.T) {
	_, err := NewFieldSpec("id", 0, FieldSpecOpt{}.WithLen(0), nil)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = NewFieldSpec("id", 0, FieldSpecOpt{}.WithLen(1000), nil)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestFileFieldSpecsRunningStart(t *testing.T) {
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "a", Opt: FieldSpecOpt{}.WithLen(4)},
		{Name: "b", Opt: FieldSpecOpt{}.WithLen(6)},
		{Name: "c", Opt: FieldSpecOpt{}.WithStart(20).WithLen(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, 25, ffs.RecordLength())

	a := ffs.MustGet("a")
	assert.Equal(t, 0, a.Start)
	b := ffs.MustGet("b")
	assert.Equal(t, 4, b.Start)
	assert.Equal(t, 10, b.Stop)
}

func TestFileFieldSpecsDuplicateName(t *testing.T) {
	_, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "a", Opt: FieldSpecOpt{}.WithLen(4)},
		{Name: "a", Opt: FieldSpecOpt{}.WithLen(4)},
	})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestFileFieldSpecsClone(t *testing.T) {
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "a", Opt: FieldSpecOpt{}.WithLen(4)},
		{Name: "b", Opt: FieldSpecOpt{}.WithLen(6)},
	})
	require.NoError(t, err)

	clone, err := ffs.Clone("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, clone.Names())
	assert.Equal(t, ffs.MustGet("b"), clone.MustGet("b"))

	_, err = ffs.Clone("nope")
	assert.ErrorIs(t, err, ErrSchema)
}
