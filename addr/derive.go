package addr

import "golang.org/x/crypto/sha3"

// Derivation scheme bytes. Each derivation scheme appends its own byte to
// the hashed preimage, so two schemes can never produce the same address
// for the same (origin, seed).
const (
	// SchemeResource tags resource-account derivation.
	SchemeResource byte = 0xFF
	// SchemeNamedObject tags named-object derivation. Present so callers can
	// locate object-mode holders; not used by resource-account derivation.
	SchemeNamedObject byte = 0xFE
)

// Derive computes the resource-account address for (origin, seed).
//
// Pure and deterministic: sha3-256(origin || seed || SchemeResource).
// There are no failure modes; any seed bytes are valid, including empty.
func Derive(origin Address, seed []byte) Address {
	return deriveScheme(origin, seed, SchemeResource)
}

// DeriveNamedObject computes the named-object address for (origin, seed).
func DeriveNamedObject(origin Address, seed []byte) Address {
	return deriveScheme(origin, seed, SchemeNamedObject)
}

func deriveScheme(origin Address, seed []byte, scheme byte) Address {
	h := sha3.New256()
	_, _ = h.Write(origin[:])
	_, _ = h.Write(seed)
	_, _ = h.Write([]byte{scheme})
	var out Address
	copy(out[:], h.Sum(nil))
	return out
}
