package fwfdb

import (
	"bytes"
	"strconv"
	"strings"
)

// Predicate tests one Line, returning whether it should be kept.
type Predicate func(Line) bool

// Operator is a chainable per-field accessor: it extracts a field's bytes
// from a Line, optionally transforms them (Strip/Lower/Upper), and produces
// comparison Predicates against a literal. Operator values are immutable;
// every transform method returns a new Operator.
type Operator struct {
	name      string
	transform func([]byte) []byte
}

// Field starts an operator chain reading the named field.
func Field(name string) Operator {
	return Operator{name: name}
}

func (o Operator) extract(l Line) []byte {
	raw := l.Field(o.name)
	if o.transform != nil {
		return o.transform(raw)
	}
	return raw
}

func (o Operator) chain(t func([]byte) []byte) Operator {
	prev := o.transform
	return Operator{name: o.name, transform: func(b []byte) []byte {
		if prev != nil {
			b = prev(b)
		}
		return t(b)
	}}
}

// Strip trims leading and trailing ASCII whitespace before comparison.
func (o Operator) Strip() Operator {
	return o.chain(func(b []byte) []byte { return bytes.TrimSpace(b) })
}

// Lower lowercases ASCII letters before comparison.
func (o Operator) Lower() Operator {
	return o.chain(bytes.ToLower)
}

// Upper uppercases ASCII letters before comparison.
func (o Operator) Upper() Operator {
	return o.chain(bytes.ToUpper)
}

// Str decodes the field with the named encoding before comparison, changing
// the comparison domain from raw record bytes to decoded text. An empty
// encoding defaults to "utf-8". Recognized encodings are "utf-8" (the raw
// bytes, left as-is and not validated) and "latin1" (aka "iso-8859-1", where
// each byte is one code point and is re-encoded as UTF-8); any other value
// decodes as utf-8.
func (o Operator) Str(encoding string) Operator {
	return o.chain(func(b []byte) []byte { return decodeEncoding(b, encoding) })
}

func decodeEncoding(b []byte, encoding string) []byte {
	switch strings.ToLower(encoding) {
	case "latin1", "iso-8859-1", "iso8859-1":
		var sb strings.Builder
		sb.Grow(len(b))
		for _, c := range b {
			sb.WriteRune(rune(c))
		}
		return []byte(sb.String())
	default:
		return b
	}
}

// Int parses the field (after any chained transforms) as a base-10 integer
// before comparison, changing the comparison domain from bytes to int64.
func (o Operator) Int() IntOperator {
	return IntOperator{op: o}
}

// IntOperator is Operator's numeric counterpart: it extracts and parses a
// field as an int64 before comparing, instead of comparing raw bytes.
type IntOperator struct {
	op Operator
}

func (io IntOperator) extract(l Line) (int64, error) {
	raw := io.op.extract(l)
	return strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64)
}

// Eq selects lines whose parsed field equals v. Lines that fail to parse
// never match.
func (io IntOperator) Eq(v int64) Predicate {
	return func(l Line) bool { n, err := io.extract(l); return err == nil && n == v }
}

// Ne selects lines whose parsed field does not equal v. Lines that fail to
// parse never match.
func (io IntOperator) Ne(v int64) Predicate {
	return func(l Line) bool { n, err := io.extract(l); return err == nil && n != v }
}

// Lt selects lines whose parsed field is strictly less than v.
func (io IntOperator) Lt(v int64) Predicate {
	return func(l Line) bool { n, err := io.extract(l); return err == nil && n < v }
}

// Le selects lines whose parsed field is at most v.
func (io IntOperator) Le(v int64) Predicate {
	return func(l Line) bool { n, err := io.extract(l); return err == nil && n <= v }
}

// Gt selects lines whose parsed field is strictly greater than v.
func (io IntOperator) Gt(v int64) Predicate {
	return func(l Line) bool { n, err := io.extract(l); return err == nil && n > v }
}

// Ge selects lines whose parsed field is at least v.
func (io IntOperator) Ge(v int64) Predicate {
	return func(l Line) bool { n, err := io.extract(l); return err == nil && n >= v }
}

// Eq returns a Predicate selecting lines whose transformed field equals v.
func (o Operator) Eq(v []byte) Predicate {
	return func(l Line) bool { return bytes.Equal(o.extract(l), v) }
}

// EqStr is Eq with a string literal.
func (o Operator) EqStr(v string) Predicate { return o.Eq([]byte(v)) }

// Ne is the negation of Eq.
func (o Operator) Ne(v []byte) Predicate {
	return func(l Line) bool { return !bytes.Equal(o.extract(l), v) }
}

// Lt selects lines whose transformed field sorts strictly before v
// (byte-lexicographic).
func (o Operator) Lt(v []byte) Predicate {
	return func(l Line) bool { return bytes.Compare(o.extract(l), v) < 0 }
}

// Le selects lines whose transformed field sorts at or before v.
func (o Operator) Le(v []byte) Predicate {
	return func(l Line) bool { return bytes.Compare(o.extract(l), v) <= 0 }
}

// Gt selects lines whose transformed field sorts strictly after v.
func (o Operator) Gt(v []byte) Predicate {
	return func(l Line) bool { return bytes.Compare(o.extract(l), v) > 0 }
}

// Ge selects lines whose transformed field sorts at or after v.
func (o Operator) Ge(v []byte) Predicate {
	return func(l Line) bool { return bytes.Compare(o.extract(l), v) >= 0 }
}

// In selects lines whose transformed field matches any of vs.
func (o Operator) In(vs ...[]byte) Predicate {
	return func(l Line) bool {
		got := o.extract(l)
		for _, v := range vs {
			if bytes.Equal(got, v) {
				return true
			}
		}
		return false
	}
}

// NotIn is the negation of In.
func (o Operator) NotIn(vs ...[]byte) Predicate {
	in := o.In(vs...)
	return func(l Line) bool { return !in(l) }
}

// HasPrefix selects lines whose transformed field starts with prefix.
func (o Operator) HasPrefix(prefix []byte) Predicate {
	return func(l Line) bool { return bytes.HasPrefix(o.extract(l), prefix) }
}

// And combines predicates with short-circuit logical AND; an empty list
// matches every line.
func And(preds ...Predicate) Predicate {
	return func(l Line) bool {
		for _, p := range preds {
			if !p(l) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates with short-circuit logical OR; an empty list
// matches no line.
func Or(preds ...Predicate) Predicate {
	return func(l Line) bool {
		for _, p := range preds {
			if p(l) {
				return true
			}
		}
		return false
	}
}

// Exclude negates a predicate.
func Exclude(p Predicate) Predicate {
	return func(l Line) bool { return !p(l) }
}

// Filter returns a Subset of v containing every line p accepts.
func Filter(v View, p Predicate) (*Subset, error) {
	var indices []int64
	err := Iter(v, func(l Line) bool {
		if p(l) {
			indices = append(indices, l.No)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return newSubset(v, indices), nil
}
