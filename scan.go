package fwfdb

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// progressCadence is how often (in records scanned) the scan kernel invokes
// a caller-supplied progress callback.
const progressCadence = 65536

// ParseError reports a numeric key parse failure at a specific line during a
// kernel scan. It wraps the underlying strconv error with github.com/pkg/errors
// so callers get a stack trace alongside the line number.
type ParseError struct {
	Line int64
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fwfdb: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports a ParseError as ErrParseFailed, so errors.Is(err, ErrParseFailed)
// holds for kernel parse failures as well.
func (e *ParseError) Is(target error) bool { return target == ErrParseFailed }

// ScanBounds narrows a kernel scan to records whose key field falls in
// [Lower, Upper] (or [Lower, Upper) if UpperInclusive is false), comparing
// only the first PrefixLen bytes of the field when PrefixLen > 0. A nil
// Lower or Upper means unbounded on that side.
type ScanBounds struct {
	Lower          []byte
	Upper          []byte
	UpperInclusive bool
	PrefixLen      int
}

func (b ScanBounds) key(field []byte) []byte {
	if b.PrefixLen > 0 && b.PrefixLen < len(field) {
		return field[:b.PrefixLen]
	}
	return field
}

func (b ScanBounds) accept(key []byte) bool {
	if b.Lower != nil && bytes.Compare(key, b.Lower) < 0 {
		return false
	}
	if b.Upper != nil {
		c := bytes.Compare(key, b.Upper)
		if b.UpperInclusive {
			if c > 0 {
				return false
			}
		} else if c >= 0 {
			return false
		}
	}
	return true
}

// ScanProgress is called every progressCadence records during a kernel
// scan, and once more at completion.
type ScanProgress func(scanned, total int64)

// ScanKeys is the scan kernel: it walks field's bytes across v's full
// extent via the fast IterLinesWithField path (no Line allocation per
// record), applies bounds, and calls insert once per accepted record with
// the record's line number plus offset and (possibly bound-truncated) key
// bytes. insert must not retain key past the call -- it borrows the
// underlying record buffer. Returning an error from insert aborts the scan.
//
// offset lets consecutive invocations over a multi-file's child views
// populate a single container with globally unique line numbers: call
// ScanKeys once per child with offset set to that child's cumulative
// position (e.g. MultiFile's own offset for that child), and every insert
// sees a line number addressed in the combined space rather than v's local
// index space.
func ScanKeys(v View, field string, bounds ScanBounds, offset int64, progress ScanProgress, insert func(lineno int64, key []byte) error) error {
	if _, ok := v.Schema().Get(field); !ok {
		return wrapf(ErrSchema, "no such field: %q", field)
	}
	total := v.Len()
	var scanned int64
	var insertErr error
	err := v.IterLinesWithField(field, func(i int64, raw []byte) bool {
		key := bounds.key(raw)
		if bounds.accept(key) {
			if err := insert(offset+i, key); err != nil {
				insertErr = err
				return false
			}
		}
		scanned++
		if progress != nil && scanned%progressCadence == 0 {
			progress(scanned, total)
		}
		return true
	})
	if err != nil {
		return err
	}
	if insertErr != nil {
		return insertErr
	}
	if progress != nil {
		progress(scanned, total)
	}
	return nil
}

// ScanIntKeys is ScanKeys specialized for an integer-valued field: the key
// passed to insert is the base-10 parse of the (bound-truncated) field
// bytes. A parse failure returns a *ParseError identifying the offending
// line (already offset-adjusted) and aborts the scan; bounds are still
// compared byte-lexicographically against the raw field, matching the
// kernel's string-bound contract.
func ScanIntKeys(v View, field string, bounds ScanBounds, offset int64, progress ScanProgress, insert func(lineno int64, key int64) error) error {
	return ScanKeys(v, field, bounds, offset, progress, func(lineno int64, key []byte) error {
		n, err := strconv.ParseInt(string(bytes.TrimSpace(key)), 10, 64)
		if err != nil {
			return &ParseError{Line: lineno, Err: errors.Wrap(err, "scan kernel")}
		}
		return insert(lineno, n)
	})
}

// LogProgress is a ScanProgress that logs completion percentage via
// grailbio-bio's structured logger, matching the teacher's progress-logging
// idiom for long-running scans.
func LogProgress(label string) ScanProgress {
	return func(scanned, total int64) {
		if total <= 0 {
			log.Debug.Printf("%s: %d records scanned", label, scanned)
			return
		}
		log.Debug.Printf("%s: %d/%d records scanned (%.1f%%)", label, scanned, total, 100*float64(scanned)/float64(total))
	}
}
