package fwfdb

import (
	"strconv"
	"time"
)

// Line is a borrowed handle to one record: the view it came from, the line
// number relative to that view, and the raw bytes of the record (including
// its trailing newline). Field access resolves the field's byte range
// against those bytes; conversions materialize on demand.
type Line struct {
	View View
	No   int64
	Raw  []byte
}

// cutField returns the field's slice of l.Raw without copying.
func (l Line) cutField(fs *FieldSpec) []byte {
	return l.Raw[fs.Start:fs.Stop]
}

// Field returns the raw bytes of the named field. It panics if name is not
// a field in the owning view's schema -- callers that accept untrusted
// field names should check Schema().Get first.
func (l Line) Field(name string) []byte {
	fs := l.View.Schema().MustGet(name)
	return l.cutField(fs)
}

// FieldAt returns the raw bytes of the field at positional index idx (in
// schema declaration order).
func (l Line) FieldAt(idx int) []byte {
	name, ok := l.View.Schema().NameAt(idx)
	if !ok {
		panic("fwfdb: field index out of range")
	}
	return l.Field(name)
}

// Str returns the named field decoded as a string (a copy).
func (l Line) Str(name string) string {
	return string(l.Field(name))
}

// Int returns the named field parsed as a base-10 integer.
func (l Line) Int(name string) (int64, error) {
	v, err := strconv.ParseInt(string(l.Field(name)), 10, 64)
	if err != nil {
		return 0, wrapf(ErrParseFailed, "line %d field %q: %v", l.No, name, err)
	}
	return v, nil
}

// Date parses the named field as a date using layout (default "20060102",
// matching the Python default "%Y%m%d").
func (l Line) Date(name, layout string) (time.Time, error) {
	if layout == "" {
		layout = "20060102"
	}
	t, err := time.Parse(layout, l.Str(name))
	if err != nil {
		return time.Time{}, wrapf(ErrParseFailed, "line %d field %q: %v", l.No, name, err)
	}
	return t, nil
}

// Fields returns a snapshot map of every field's raw bytes -- a
// decoded-row convenience for callers that want every field at once rather
// than one Field call per name. Each value is a copy (unlike Field, which
// borrows).
func (l Line) Fields() map[string][]byte {
	names := l.View.Schema().Names()
	out := make(map[string][]byte, len(names))
	for _, n := range names {
		raw := l.Field(n)
		cp := make([]byte, len(raw))
		copy(cp, raw)
		out[n] = cp
	}
	return out
}
