package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/sha3"

	"xdao.co/raforge/addr"
)

// ed25519AuthScheme is the authentication-key scheme byte appended to an
// ed25519 public key before hashing into an account address.
const ed25519AuthScheme = 0x00

// PublisherKeyFromSeed returns the publisher key string for an Ed25519 seed:
// "ed25519:" + base64(pubkey).
func PublisherKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return "ed25519:" + base64.StdEncoding.EncodeToString(pub)
}

// AccountAddress computes the ledger account address controlled by an
// Ed25519 public key: sha3-256(pubkey || schemeByte).
func AccountAddress(pub ed25519.PublicKey) (addr.Address, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return addr.Address{}, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	h := sha3.New256()
	_, _ = h.Write(pub)
	_, _ = h.Write([]byte{ed25519AuthScheme})
	var out addr.Address
	copy(out[:], h.Sum(nil))
	return out, nil
}

// AccountAddressFromSeed computes the account address for an Ed25519 seed.
func AccountAddressFromSeed(seed []byte) (addr.Address, error) {
	priv := ed25519.NewKeyFromSeed(seed)
	return AccountAddress(priv.Public().(ed25519.PublicKey))
}

// DeriveRoleSeed deterministically derives a role-specific Ed25519 seed from
// a root seed.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("xdao-raforge-keys-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}

// SeedFromMnemonic derives a root Ed25519 seed from a BIP-39 mnemonic
// sentence, validating the checksum first.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	full := bip39.NewSeed(mnemonic, passphrase)
	out := make([]byte, ed25519.SeedSize)
	copy(out, full[:ed25519.SeedSize])
	return out, nil
}

// NewMnemonic generates a fresh 24-word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}
