package fwfdb

import "fmt"

// FieldSpec describes a single named byte range within a fixed-width
// record. Construction accepts exactly one of four shape combinations:
// {Len}, {Start,Len}, {Stop,Len}, {Start,Stop} (or {Slice} via NewFieldSpec),
// resolved against a caller-supplied running start position when only Len is
// given.
type FieldSpec struct {
	Name  string
	Start int
	Stop  int

	// Attr carries opaque user attributes (dtype, regex, default, ...)
	// that this package never interprets.
	Attr map[string]any
}

// FieldSpecOpt configures one shape combination for NewFieldSpec.
type FieldSpecOpt struct {
	Len   *int
	Start *int
	Stop  *int
	Slice *[2]int
}

func intp(v int) *int { return &v }

// WithLen sets the {Len} or {Start,Len}/{Stop,Len} shape component.
func (o FieldSpecOpt) WithLen(n int) FieldSpecOpt { o.Len = intp(n); return o }

// WithStart sets the Start shape component.
func (o FieldSpecOpt) WithStart(n int) FieldSpecOpt { o.Start = intp(n); return o }

// WithStop sets the Stop shape component.
func (o FieldSpecOpt) WithStop(n int) FieldSpecOpt { o.Stop = intp(n); return o }

// WithSlice sets the {start,stop} shape directly, conflicting with
// Len/Start/Stop.
func (o FieldSpecOpt) WithSlice(start, stop int) FieldSpecOpt {
	o.Slice = &[2]int{start, stop}
	return o
}

// NewFieldSpec constructs a FieldSpec named name, resolving the byte range
// from exactly one valid shape combination in opt against startPos (the
// running record length at the point this field is declared). Conflicting
// or ambiguous shapes fail with ErrSchema.
func NewFieldSpec(name string, startPos int, opt FieldSpecOpt, attr map[string]any) (*FieldSpec, error) {
	if name == "" {
		return nil, wrapf(ErrSchema, "field name must not be empty")
	}

	start, stop, err := resolveShape(startPos, opt)
	if err != nil {
		return nil, wrapf(ErrSchema, "field %q: %v", name, err)
	}
	if stop-start <= 0 || stop-start >= 1000 {
		return nil, wrapf(ErrSchema, "field %q: length %d out of range (0,1000)", name, stop-start)
	}
	if start < 0 || stop < start {
		return nil, wrapf(ErrSchema, "field %q: invalid range [%d,%d)", name, start, stop)
	}
	return &FieldSpec{Name: name, Start: start, Stop: stop, Attr: attr}, nil
}

func resolveShape(startPos int, opt FieldSpecOpt) (start, stop int, err error) {
	switch {
	case opt.Slice != nil:
		if opt.Len != nil || opt.Start != nil || opt.Stop != nil {
			return 0, 0, fmt.Errorf("slice cannot be combined with start/stop/len")
		}
		return opt.Slice[0], opt.Slice[1], nil

	case opt.Start != nil && opt.Len != nil:
		if opt.Stop != nil {
			return 0, 0, fmt.Errorf("start+len cannot be combined with stop")
		}
		return *opt.Start, *opt.Start + *opt.Len, nil

	case opt.Stop != nil && opt.Len != nil:
		if opt.Start != nil {
			return 0, 0, fmt.Errorf("stop+len cannot be combined with start")
		}
		return *opt.Stop - *opt.Len, *opt.Stop, nil

	case opt.Start != nil && opt.Stop != nil:
		if opt.Len != nil {
			return 0, 0, fmt.Errorf("start+stop cannot be combined with len")
		}
		return *opt.Start, *opt.Stop, nil

	case opt.Len != nil:
		return startPos, startPos + *opt.Len, nil

	default:
		return 0, 0, fmt.Errorf("one of len, start+len, stop+len, start+stop or slice is required")
	}
}

// Len returns the byte width of the field.
func (f *FieldSpec) Len() int { return f.Stop - f.Start }

func (f *FieldSpec) String() string {
	return fmt.Sprintf("%s=(%d,%d)", f.Name, f.Start, f.Stop)
}

// FileFieldSpecs is an ordered, name-unique collection of FieldSpecs plus a
// cached record length (the max Stop across all fields, not the sum --
// fields may contain gaps or be reordered).
type FileFieldSpecs struct {
	order  []string
	fields map[string]*FieldSpec
	reclen int
}

// NewFileFieldSpecs builds a FileFieldSpecs from an ordered list of
// (name, opt, attr) declarations. Each field's implicit start position
// (used only when opt supplies Len alone) is the record length accumulated
// from all preceding fields.
func NewFileFieldSpecs(specs []FieldSpecInput) (*FileFieldSpecs, error) {
	ffs := &FileFieldSpecs{fields: make(map[string]*FieldSpec, len(specs))}
	for _, s := range specs {
		if err := ffs.AddField(s.Name, s.Opt, s.Attr); err != nil {
			return nil, err
		}
	}
	return ffs, nil
}

// FieldSpecInput is the raw declaration shape consumed by NewFileFieldSpecs.
type FieldSpecInput struct {
	Name string
	Opt  FieldSpecOpt
	Attr map[string]any
}

// AddField appends a new field to the schema. Its implicit Len-only start is
// the schema's current record length.
func (ffs *FileFieldSpecs) AddField(name string, opt FieldSpecOpt, attr map[string]any) error {
	if _, ok := ffs.fields[name]; ok {
		return wrapf(ErrSchema, "field names must be unique: %q", name)
	}
	fs, err := NewFieldSpec(name, ffs.reclen, opt, attr)
	if err != nil {
		return err
	}
	ffs.fields[name] = fs
	ffs.order = append(ffs.order, name)
	ffs.recompute()
	return nil
}

// UpdateField re-runs the shape resolution for an existing field.
func (ffs *FileFieldSpecs) UpdateField(name string, opt FieldSpecOpt) error {
	fs, ok := ffs.fields[name]
	if !ok {
		return wrapf(ErrSchema, "no such field: %q", name)
	}
	start, stop, err := resolveShape(ffs.reclen, opt)
	if err != nil {
		return wrapf(ErrSchema, "field %q: %v", name, err)
	}
	if stop-start <= 0 || stop-start >= 1000 || start < 0 {
		return wrapf(ErrSchema, "field %q: invalid range [%d,%d)", name, start, stop)
	}
	fs.Start, fs.Stop = start, stop
	ffs.recompute()
	return nil
}

func (ffs *FileFieldSpecs) recompute() {
	max := 0
	for _, fs := range ffs.fields {
		if fs.Stop > max {
			max = fs.Stop
		}
	}
	ffs.reclen = max
}

// RecordLength returns the maximum Stop across all fields, or 0 if empty.
func (ffs *FileFieldSpecs) RecordLength() int { return ffs.reclen }

// Get looks up a field by name.
func (ffs *FileFieldSpecs) Get(name string) (*FieldSpec, bool) {
	fs, ok := ffs.fields[name]
	return fs, ok
}

// MustGet looks up a field by name, panicking if absent -- for call sites
// that have already validated the name exists.
func (ffs *FileFieldSpecs) MustGet(name string) *FieldSpec {
	fs, ok := ffs.fields[name]
	if !ok {
		panic(fmt.Sprintf("fwfdb: no such field: %q", name))
	}
	return fs
}

// Names returns the field names in declaration order.
func (ffs *FileFieldSpecs) Names() []string {
	out := make([]string, len(ffs.order))
	copy(out, ffs.order)
	return out
}

// Len returns the number of fields.
func (ffs *FileFieldSpecs) Len() int { return len(ffs.order) }

// NameAt returns the field name at positional index idx (0-based, in
// declaration order), for callers that address fields by position.
func (ffs *FileFieldSpecs) NameAt(idx int) (string, bool) {
	if idx < 0 || idx >= len(ffs.order) {
		return "", false
	}
	return ffs.order[idx], true
}

// Clone produces a new FileFieldSpecs restricted to (and reordered by)
// names, sharing the underlying *FieldSpec objects. An empty names selects
// all fields in their current order.
func (ffs *FileFieldSpecs) Clone(names ...string) (*FileFieldSpecs, error) {
	if len(names) == 0 {
		names = ffs.order
	}
	out := &FileFieldSpecs{fields: make(map[string]*FieldSpec, len(names))}
	for _, n := range names {
		fs, ok := ffs.fields[n]
		if !ok {
			return nil, wrapf(ErrSchema, "no such field: %q", n)
		}
		out.fields[n] = fs
		out.order = append(out.order, n)
	}
	out.recompute()
	return out, nil
}

func (ffs *FileFieldSpecs) String() string {
	s := "FileFieldSpecs(reclen=" + fmt.Sprint(ffs.reclen) + ", fields=["
	for i, n := range ffs.order {
		if i > 0 {
			s += ", "
		}
		s += ffs.fields[n].String()
	}
	return s + "])"
}
