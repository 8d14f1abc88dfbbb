package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"
)

func TestDeriveRoleSeedDeterministic(t *testing.T) {
	root := make([]byte, ed25519.SeedSize)
	for i := range root {
		root[i] = byte(i)
	}

	a, err := DeriveRoleSeed(root, "publisher")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	b, err := DeriveRoleSeed(root, "publisher")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveRoleSeed(root, "operator")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different roles to derive different seeds")
	}

	if _, err := DeriveRoleSeed(root[:16], "publisher"); err == nil {
		t.Fatalf("short root seed should fail")
	}
	if _, err := DeriveRoleSeed(root, "bad role!"); err == nil {
		t.Fatalf("invalid role should fail")
	}
}

func TestPublisherKeyFromSeedFormat(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}
	key := PublisherKeyFromSeed(seed)
	if !strings.HasPrefix(key, "ed25519:") {
		t.Fatalf("expected ed25519 prefix, got %q", key)
	}
	b64 := strings.TrimPrefix(key, "ed25519:")
	pubBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("expected valid base64: %v", err)
	}
	if len(pubBytes) != ed25519.PublicKeySize {
		t.Fatalf("expected %d pubkey bytes, got %d", ed25519.PublicKeySize, len(pubBytes))
	}
}

func TestAccountAddressFromSeed(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	a, err := AccountAddressFromSeed(seed)
	if err != nil {
		t.Fatalf("AccountAddressFromSeed: %v", err)
	}
	if a.IsZero() {
		t.Fatalf("expected non-zero address")
	}

	b, err := AccountAddressFromSeed(seed)
	if err != nil {
		t.Fatalf("AccountAddressFromSeed: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic address")
	}

	seed[0] ^= 0xFF
	c, err := AccountAddressFromSeed(seed)
	if err != nil {
		t.Fatalf("AccountAddressFromSeed: %v", err)
	}
	if a == c {
		t.Fatalf("different seeds must yield different addresses")
	}

	if _, err := AccountAddress([]byte("short")); err == nil {
		t.Fatalf("short public key should fail")
	}
}

func TestSeedFromMnemonic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	if got := len(strings.Fields(mnemonic)); got != 24 {
		t.Fatalf("expected 24 words, got %d", got)
	}

	a, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if len(a) != ed25519.SeedSize {
		t.Fatalf("seed length: got %d", len(a))
	}

	b, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic seed")
	}

	c, err := SeedFromMnemonic(mnemonic, "passphrase")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("passphrase must change the seed")
	}

	if _, err := SeedFromMnemonic("not a valid mnemonic sentence", ""); err == nil {
		t.Fatalf("invalid mnemonic should fail")
	}
}
