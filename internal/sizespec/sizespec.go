// Package sizespec parses and evaluates the size expressions used for
// -min-free-space and -min-free-inodes: a percentage of the total capacity,
// or an absolute byte/inode count expressed with decimal (K/M/G/T) or
// binary (Ki/Mi/Gi/Ti) unit suffixes.
package sizespec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the two flavors a SizeSpec can take.
type Kind int

const (
	// Absolute means the value is a fixed byte or inode count.
	Absolute Kind = iota
	// Percentage means the value is a fraction of the total capacity.
	Percentage
)

// SizeSpec is either an absolute quantity or a percentage of some total,
// resolved lazily via Value once the total capacity is known.
type SizeSpec struct {
	kind       Kind
	absolute   uint64
	percentage float64
}

// ErrEmpty is returned when parsing an empty string.
var ErrEmpty = errors.New("sizespec: empty string")

// UnitError reports an unrecognized trailing unit character.
type UnitError struct {
	Unit byte
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("sizespec: invalid unit %q", e.Unit)
}

// FromAbsolute builds a SizeSpec representing a fixed quantity.
func FromAbsolute(n uint64) SizeSpec {
	return SizeSpec{kind: Absolute, absolute: n}
}

// FromPercentage builds a SizeSpec representing a percentage of a total.
func FromPercentage(pct float64) SizeSpec {
	return SizeSpec{kind: Percentage, percentage: pct}
}

// Kind reports whether the spec is Absolute or Percentage.
func (s SizeSpec) Kind() Kind { return s.kind }

// Parse parses a size expression such as "10%", "500M", "2Gi", or a bare
// integer (bytes/inodes). Decimal units (K, M, G, T) are powers of 1000;
// binary units (Ki, Mi, Gi, Ti) are powers of 1024. A trailing "%" produces
// a Percentage spec; anything else produces an Absolute spec.
func Parse(s string) (SizeSpec, error) {
	if s == "" {
		return SizeSpec{}, ErrEmpty
	}
	if s[0] == '-' {
		return SizeSpec{}, fmt.Errorf("sizespec: negative size %q", s)
	}

	if strings.HasSuffix(s, "%") {
		numeric := strings.TrimSuffix(s, "%")
		pct, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			return SizeSpec{}, fmt.Errorf("sizespec: invalid percentage %q: %w", s, err)
		}
		return FromPercentage(pct), nil
	}

	if mult, ok := binaryMultiplier(s); ok {
		numeric := s[:len(s)-2]
		n, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			return SizeSpec{}, fmt.Errorf("sizespec: invalid number %q: %w", s, err)
		}
		return FromAbsolute(uint64(n * float64(mult))), nil
	}

	last := s[len(s)-1]
	if mult, ok := decimalMultiplier(last); ok {
		numeric := s[:len(s)-1]
		n, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			return SizeSpec{}, fmt.Errorf("sizespec: invalid number %q: %w", s, err)
		}
		return FromAbsolute(uint64(n * float64(mult))), nil
	}

	// No recognized unit suffix: must be a bare, unsigned integer. (A
	// leading '-' has already been rejected above for every form.)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if last < '0' || last > '9' {
			return SizeSpec{}, &UnitError{Unit: last}
		}
		return SizeSpec{}, fmt.Errorf("sizespec: invalid integer %q: %w", s, err)
	}
	return FromAbsolute(n), nil
}

func binaryMultiplier(s string) (uint64, bool) {
	if len(s) < 3 {
		return 0, false
	}
	switch s[len(s)-2:] {
	case "Ki":
		return 1 << 10, true
	case "Mi":
		return 1 << 20, true
	case "Gi":
		return 1 << 30, true
	case "Ti":
		return 1 << 40, true
	}
	return 0, false
}

func decimalMultiplier(unit byte) (uint64, bool) {
	switch unit {
	case 'K':
		return 1_000, true
	case 'M':
		return 1_000_000, true
	case 'G':
		return 1_000_000_000, true
	case 'T':
		return 1_000_000_000_000, true
	}
	return 0, false
}

// Value resolves the spec against a total capacity, returning an absolute
// quantity. Percentages are not clamped: 0-100% yields a value within
// [0, total], larger percentages exceed total. Callers that need
// saturating-subtraction semantics against total should use the returned
// value directly with that arithmetic.
func (s SizeSpec) Value(total uint64) uint64 {
	if s.kind == Absolute {
		return s.absolute
	}
	return uint64(float64(total) * s.percentage / 100.0)
}

// String renders the spec in canonical form: percentages as "N%", absolute
// counts below 1000 as plain integers, larger ones in the largest decimal
// unit (K, M, G, T) whose value is at least 1, with as many fractional
// digits as needed (5124 renders as "5.124K").
func (s SizeSpec) String() string {
	if s.kind == Percentage {
		return formatFloat(s.percentage) + "%"
	}

	n := s.absolute
	switch {
	case n < 1_000:
		return strconv.FormatUint(n, 10)
	case n < 1_000_000:
		return formatFloat(float64(n)/1_000) + "K"
	case n < 1_000_000_000:
		return formatFloat(float64(n)/1_000_000) + "M"
	case n < 1_000_000_000_000:
		return formatFloat(float64(n)/1_000_000_000) + "G"
	default:
		return formatFloat(float64(n)/1_000_000_000_000) + "T"
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}
