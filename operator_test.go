package fwfdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldEq(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	s, err := Filter(f, Field("id").EqStr("0003"))
	require.NoError(t, err)
	require.EqualValues(t, 1, s.Len())
	l, err := LineAt(s, 0)
	require.NoError(t, err)
	assert.Equal(t, "cccccc", l.Str("name"))
}

func TestFieldComparisons(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	s, err := Filter(f, Field("id").Gt([]byte("0002")))
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.Len())

	s, err = Filter(f, Field("id").Le([]byte("0002")))
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Len())
}

func TestFieldInNotIn(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	s, err := Filter(f, Field("id").In([]byte("0001"), []byte("0003")))
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Len())

	s, err = Filter(f, Field("id").NotIn([]byte("0001"), []byte("0003")))
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.Len())
}

func TestAndOrExclude(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	p := And(Field("id").Gt([]byte("0001")), Field("id").Lt([]byte("0004")))
	s, err := Filter(f, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Len())

	p2 := Or(Field("id").EqStr("0001"), Field("id").EqStr("0005"))
	s, err = Filter(f, p2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Len())

	s, err = Filter(f, Exclude(p2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.Len())
}

func TestOperatorStripLower(t *testing.T) {
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "code", Opt: FieldSpecOpt{}.WithLen(8)},
	})
	require.NoError(t, err)
	f, err := OpenBytes([]byte("  ABC   \nxyz     \n"), ffs)
	require.NoError(t, err)
	defer f.Close()

	s, err := Filter(f, Field("code").Strip().Lower().EqStr("abc"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.Len())
}

func TestOperatorStr(t *testing.T) {
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "code", Opt: FieldSpecOpt{}.WithLen(4)},
	})
	require.NoError(t, err)
	f, err := OpenBytes([]byte("caf\xe9\nabcd\n"), ffs)
	require.NoError(t, err)
	defer f.Close()

	s, err := Filter(f, Field("code").Str("latin1").EqStr("café"))
	require.NoError(t, err)
	require.EqualValues(t, 1, s.Len())
	l, err := LineAt(s, 0)
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9", l.Str("code"))
}

func TestOperatorInt(t *testing.T) {
	f := openTestFile(t)
	defer f.Close()

	s, err := Filter(f, Field("id").Int().Gt(2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.Len())

	s, err = Filter(f, Field("id").Int().Eq(3))
	require.NoError(t, err)
	require.EqualValues(t, 1, s.Len())
	l, err := LineAt(s, 0)
	require.NoError(t, err)
	assert.Equal(t, "cccccc", l.Str("name"))

	s, err = Filter(f, Field("id").Int().Le(2))
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Len())
}

func TestOperatorIntParseFailureNeverMatches(t *testing.T) {
	ffs, err := NewFileFieldSpecs([]FieldSpecInput{
		{Name: "n", Opt: FieldSpecOpt{}.WithLen(4)},
	})
	require.NoError(t, err)
	f, err := OpenBytes([]byte("0001\nXXXX\n0003\n"), ffs)
	require.NoError(t, err)
	defer f.Close()

	s, err := Filter(f, Field("n").Int().Ge(0))
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Len())
}
