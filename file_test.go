package fwfdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *FileFieldSpecs {
	t.Helper()
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "id", Opt: FieldSpecOpt{}.WithLen(4)},
		{Name: "name", Opt: FieldSpecOpt{}.WithLen(6)},
	})
	require.NoError(t, err)
	return ffs
}

func TestOpenBytesBasic(t *testing.T) {
	data := []byte("0001aaaaaa\n0002bbbbbb\n0003cccccc\n")
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)
	defer f.Close()

	assert.EqualValues(t, 3, f.Len())
	assert.Equal(t, 11, f.RecordWidth())

	line, err := f.RawLineAt(0)
	require.NoError(t, err)
	assert.Equal(t, "0001aaaaaa\n", string(line))

	line, err = f.RawLineAt(-1)
	require.NoError(t, err)
	assert.Equal(t, "0003cccccc\n", string(line))

	_, err = f.RawLineAt(3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestOpenBytesNoTrailingNewline(t *testing.T) {
	data := []byte("0001aaaaaa\n0002bbbbbb")
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)
	defer f.Close()
	assert.EqualValues(t, 2, f.Len())
}

func TestOpenBytesCommentSkip(t *testing.T) {
	data := []byte("# a comment\n0001aaaaaa\n0002bbbbbb\n")
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)
	defer f.Close()
	assert.EqualValues(t, 2, f.Len())
	line, err := f.RawLineAt(0)
	require.NoError(t, err)
	assert.Equal(t, "0001aaaaaa\n", string(line))
}

func TestOpenBytesCRLF(t *testing.T) {
	data := []byte("0001aaaaaa\r\n0002bbbbbb\r\n")
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 2, f.NewlineWidth())
	assert.EqualValues(t, 2, f.Len())
}

func TestIterLines(t *testing.T) {
	data := []byte("0001aaaaaa\n0002bbbbbb\n0003cccccc\n")
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)
	defer f.Close()

	var got []int64
	err = f.IterLines(func(i int64, line []byte) bool {
		got = append(got, i)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, got)
}

func TestIterLinesWithField(t *testing.T) {
	data := []byte("0001aaaaaa\n0002bbbbbb\n0003cccccc\n")
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	err = f.IterLinesWithField("id", func(i int64, field []byte) bool {
		ids = append(ids, string(field))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0001", "0002", "0003"}, ids)
}

func TestCloseIsIdempotentAndBlocksAccess(t *testing.T) {
	data := []byte("0001aaaaaa\n")
	f, err := OpenBytes(data, testSchema(t))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.PosFromIndex(0)
	assert.True(t, errors.Is(err, ErrInvalidState))
}
