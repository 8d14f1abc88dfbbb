// Package capability implements custody of signing capabilities for derived
// accounts.
//
// Two distinct capability types exist and have independent lifetimes:
//
//   - SignerCapability: the admin-scoped token minted when an account is
//     materialized. It authorizes deriving a transient Signer for that
//     account. It lives in exactly one custody slot, is moved rather than
//     copied, and its destruction is permanent.
//   - ExtendHandle: an object-scoped handle some materialization paths attach
//     to the holder itself, letting the holder re-derive its own signer.
//     Destroying the SignerCapability does not revoke an ExtendHandle.
//
// Both types are sealed: their fields are unexported and they can only be
// minted inside this package, so a forged or cloned capability cannot be
// constructed by callers.
package capability

import (
	"errors"

	"xdao.co/raforge/addr"
)

var (
	// ErrDuplicate is returned when a custody slot already holds a token.
	ErrDuplicate = errors.New("capability: slot already holds a capability")
	// ErrMissing is returned when no token exists for the requested account.
	ErrMissing = errors.New("capability: no capability stored for account")
)

// SignerCapability authorizes signing as one derived account.
//
// The zero value is invalid; capabilities are minted only by Mint at
// materialization time.
type SignerCapability struct {
	account addr.Address
	valid   bool
}

// Mint creates the capability for a newly materialized account.
//
// The ledger calls this exactly once per materialization; there is no other
// way to obtain a SignerCapability for an account.
func Mint(account addr.Address) SignerCapability {
	return SignerCapability{account: account, valid: true}
}

// Account returns the account this capability is bound to.
func (c SignerCapability) Account() addr.Address { return c.account }

// Valid reports whether c was minted (as opposed to a zero value).
func (c SignerCapability) Valid() bool { return c.valid }

// Signer is a transient authority to act as an account. It is valid only for
// the duration of the operation that derived it and holds no state beyond
// the account it represents.
type Signer struct {
	account addr.Address
}

// Account returns the account the signer acts as.
func (s Signer) Account() addr.Address { return s.account }

// DeriveSigner produces a transient signer from a live capability.
//
// It may be called any number of times while the capability exists and has
// no persistent effect.
func DeriveSigner(c SignerCapability) (Signer, error) {
	if !c.valid {
		return Signer{}, ErrMissing
	}
	return Signer{account: c.account}, nil
}

// ExtendHandle is the object-scoped secondary capability. It is attached to
// a code holder at materialization time on the paths that support it and
// survives retirement of the account's SignerCapability.
type ExtendHandle struct {
	holder addr.Address
	valid  bool
}

// AttachExtendHandle mints the handle for a holder. Like SignerCapability,
// handles exist only through this constructor.
func AttachExtendHandle(holder addr.Address) ExtendHandle {
	return ExtendHandle{holder: holder, valid: true}
}

// Holder returns the code holder this handle is scoped to.
func (h ExtendHandle) Holder() addr.Address { return h.holder }

// Valid reports whether h was minted.
func (h ExtendHandle) Valid() bool { return h.valid }

// DeriveHolderSigner re-derives the holder's own signer from its handle.
func DeriveHolderSigner(h ExtendHandle) (Signer, error) {
	if !h.valid {
		return Signer{}, ErrMissing
	}
	return Signer{account: h.holder}, nil
}
