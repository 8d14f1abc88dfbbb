// Package addr implements deterministic resource-account address derivation.
//
// Addresses are fixed 32-byte values. A resource address is derived from an
// origin address and an arbitrary seed under a fixed derivation scheme byte,
// so addresses are computable before anything exists on chain and never
// collide with addresses produced by unrelated derivation schemes.
package addr

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Size is the byte length of an Address.
const Size = 32

// Address is a 32-byte account address.
type Address [Size]byte

// Zero is the all-zero address.
var Zero Address

// Parse decodes a 0x-prefixed or bare hex address string.
//
// Short strings are accepted and left-padded with zeros, matching the
// standard short-form rendering of addresses like 0x1.
func Parse(s string) (Address, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "0x")
	t = strings.TrimPrefix(t, "0X")
	if t == "" {
		return Zero, fmt.Errorf("addr: empty address")
	}
	if len(t) > 2*Size {
		return Zero, fmt.Errorf("addr: address too long: %d hex chars", len(t))
	}
	if len(t)%2 == 1 {
		t = "0" + t
	}
	raw, err := hex.DecodeString(t)
	if err != nil {
		return Zero, fmt.Errorf("addr: invalid hex address: %w", err)
	}
	var a Address
	copy(a[Size-len(raw):], raw)
	return a, nil
}

// MustParse is Parse but panics on error. For tests and static tables.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes copies b into an Address. b must be exactly Size bytes.
func FromBytes(b []byte) (Address, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("addr: expected %d bytes, got %d", Size, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// String renders the full 0x-prefixed lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Short renders the address with leading zero bytes trimmed (0x1 style).
func (a Address) Short() string {
	i := 0
	for i < Size-1 && a[i] == 0 {
		i++
	}
	s := hex.EncodeToString(a[i:])
	s = strings.TrimPrefix(s, "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
