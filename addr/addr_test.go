package addr

import (
	"strings"
	"testing"
)

func TestParseShortForm(t *testing.T) {
	a, err := Parse("0x1")
	if err != nil {
		t.Fatalf("Parse(0x1): %v", err)
	}
	if a[Size-1] != 0x01 {
		t.Fatalf("expected last byte 0x01, got %#x", a[Size-1])
	}
	for i := 0; i < Size-1; i++ {
		if a[i] != 0 {
			t.Fatalf("expected zero padding at byte %d", i)
		}
	}
	if a.Short() != "0x1" {
		t.Fatalf("Short() = %q, want 0x1", a.Short())
	}
}

func TestParseFullRoundTrip(t *testing.T) {
	in := "0x" + strings.Repeat("ab", Size)
	a, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.String() != in {
		t.Fatalf("String() = %q, want %q", a.String(), in)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "0x", "0xzz", "0x" + strings.Repeat("ab", Size+1)} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q): expected error", in)
		}
	}
}

func TestFromBytesLengthCheck(t *testing.T) {
	if _, err := FromBytes(make([]byte, Size-1)); err == nil {
		t.Fatalf("expected error for short input")
	}
	if _, err := FromBytes(make([]byte, Size)); err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	a := MustParse("0xcafe")
	b, err := a.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back Address
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != a {
		t.Fatalf("round trip mismatch: %s != %s", back, a)
	}
}

func TestDeriveDeterminism(t *testing.T) {
	origin := MustParse("0xa11ce")
	seed := []byte("core-v1")
	first := Derive(origin, seed)
	for i := 0; i < 10; i++ {
		if got := Derive(origin, seed); got != first {
			t.Fatalf("derivation not deterministic: %s != %s", got, first)
		}
	}
	if first.IsZero() {
		t.Fatalf("derived address is zero")
	}
}

func TestDeriveVariesWithInputs(t *testing.T) {
	origin := MustParse("0xa11ce")
	other := MustParse("0xb0b")
	base := Derive(origin, []byte("core-v1"))
	if Derive(origin, []byte("core-v2")) == base {
		t.Fatalf("different seeds collided")
	}
	if Derive(other, []byte("core-v1")) == base {
		t.Fatalf("different origins collided")
	}
}

func TestDeriveSchemeSeparation(t *testing.T) {
	origin := MustParse("0xa11ce")
	seed := []byte("core-v1")
	if Derive(origin, seed) == DeriveNamedObject(origin, seed) {
		t.Fatalf("resource and named-object schemes collided for identical inputs")
	}
}
