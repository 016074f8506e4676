package sizespec

import (
	"testing"

	"pgregory.net/rapid"
)

func TestParseAbsolutePlain(t *testing.T) {
	got, err := Parse("12345")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Kind() != Absolute || got.Value(0) != 12345 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseDecimalUnits(t *testing.T) {
	cases := map[string]uint64{
		"1K": 1_000,
		"2M": 2_000_000,
		"3G": 3_000_000_000,
		"4T": 4_000_000_000_000,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if v := got.Value(0); v != want {
			t.Fatalf("Parse(%q).Value(0) = %d, want %d", in, v, want)
		}
	}
}

func TestParseBinaryUnits(t *testing.T) {
	cases := map[string]uint64{
		"1Ki": 1 << 10,
		"2Mi": 2 << 20,
		"3Gi": 3 << 30,
		"4Ti": 4 << 40,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if v := got.Value(0); v != want {
			t.Fatalf("Parse(%q).Value(0) = %d, want %d", in, v, want)
		}
	}
}

func TestParsePercentage(t *testing.T) {
	got, err := Parse("10%")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Kind() != Percentage {
		t.Fatalf("expected Percentage kind")
	}
	if v := got.Value(1000); v != 100 {
		t.Fatalf("Value(1000) = %d, want 100", v)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(""); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestParseInvalidUnit(t *testing.T) {
	_, err := Parse("5Q")
	var unitErr *UnitError
	if err == nil {
		t.Fatal("expected error")
	}
	if !asUnitError(err, &unitErr) {
		t.Fatalf("expected UnitError, got %v (%T)", err, err)
	}
	if unitErr.Unit != 'Q' {
		t.Fatalf("Unit = %q, want 'Q'", unitErr.Unit)
	}
}

func asUnitError(err error, target **UnitError) bool {
	if ue, ok := err.(*UnitError); ok {
		*target = ue
		return true
	}
	return false
}

func TestParseNegativeRejected(t *testing.T) {
	if _, err := Parse("-5"); err == nil {
		t.Fatal("expected error parsing negative size")
	}
}

func TestParseFractionalUnit(t *testing.T) {
	got, err := Parse("0.512K")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v := got.Value(0); v != 512 {
		t.Fatalf("Value(0) = %d, want 512", v)
	}
}

func TestStringFormatsFractionalMagnitude(t *testing.T) {
	got := FromAbsolute(5124).String()
	if got != "5.124K" {
		t.Fatalf("String() = %q, want %q", got, "5.124K")
	}
}

func TestParseStringRoundTripsFractionalMagnitude(t *testing.T) {
	got, err := Parse("5124")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if str := got.String(); str != "5.124K" {
		t.Fatalf("String() = %q, want %q", str, "5.124K")
	}
	reparsed, err := Parse(got.String())
	if err != nil {
		t.Fatalf("Parse(%q): %v", got.String(), err)
	}
	if reparsed.Value(0) != 5124 {
		t.Fatalf("round-trip = %d, want 5124", reparsed.Value(0))
	}
}

func TestParseDefaultFlags(t *testing.T) {
	for _, in := range []string{"10%", "5%"} {
		if _, err := Parse(in); err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
	}
}

func TestValueAbsoluteIgnoresTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.Uint64().Draw(rt, "n")
		total := rapid.Uint64().Draw(rt, "total")
		s := FromAbsolute(n)
		if s.Value(total) != n {
			rt.Fatalf("Value(%d) = %d, want %d", total, s.Value(total), n)
		}
	})
}

func TestParseRoundTripAbsolute(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.Uint64Range(0, 999).Draw(rt, "n")
		s := FromAbsolute(n)
		str := s.String()
		reparsed, err := Parse(str)
		if err != nil {
			rt.Fatalf("Parse(%q): %v", str, err)
		}
		if reparsed.Value(0) != n {
			rt.Fatalf("round-trip %d -> %q -> %d", n, str, reparsed.Value(0))
		}
	})
}

func TestPercentageNeverExceedsTotalForValidRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		pct := rapid.Float64Range(0, 100).Draw(rt, "pct")
		total := rapid.Uint64Range(0, 1<<40).Draw(rt, "total")
		s := FromPercentage(pct)
		if v := s.Value(total); v > total {
			rt.Fatalf("Value(%d) = %d exceeds total", total, v)
		}
	})
}
