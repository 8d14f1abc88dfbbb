package capability

import (
	"sort"

	"xdao.co/raforge/addr"
)

// Custody is the keyed store holding at most one SignerCapability per
// account.
//
// Contract:
//   - Store moves a token into the account's slot; a second Store for the
//     same account fails with ErrDuplicate.
//   - Borrow derives a transient Signer without moving the token.
//   - Take moves the token out, leaving the slot empty.
//   - Destroy discards the token permanently; no signer can be derived for
//     that account through this store afterwards.
//
// Execution is serial per operation (the host ledger never interleaves
// operations), so Custody carries no locking of its own.
type Custody struct {
	slots map[addr.Address]SignerCapability
}

// NewCustody returns an empty custody store.
func NewCustody() *Custody {
	return &Custody{slots: make(map[addr.Address]SignerCapability)}
}

// Store moves token into the slot for its bound account.
func (c *Custody) Store(token SignerCapability) error {
	if !token.valid {
		return ErrMissing
	}
	if _, occupied := c.slots[token.account]; occupied {
		return ErrDuplicate
	}
	c.slots[token.account] = token
	return nil
}

// Borrow derives a transient signer for account without moving its token.
func (c *Custody) Borrow(account addr.Address) (Signer, error) {
	token, ok := c.slots[account]
	if !ok {
		return Signer{}, ErrMissing
	}
	return DeriveSigner(token)
}

// Take moves the token for account out of the store.
func (c *Custody) Take(account addr.Address) (SignerCapability, error) {
	token, ok := c.slots[account]
	if !ok {
		return SignerCapability{}, ErrMissing
	}
	delete(c.slots, account)
	return token, nil
}

// Destroy removes and discards the token for account. Irreversible.
func (c *Custody) Destroy(account addr.Address) error {
	if _, ok := c.slots[account]; !ok {
		return ErrMissing
	}
	delete(c.slots, account)
	return nil
}

// Holds reports whether a token is stored for account.
func (c *Custody) Holds(account addr.Address) bool {
	_, ok := c.slots[account]
	return ok
}

// Accounts returns the accounts with stored tokens, sorted for
// deterministic iteration.
func (c *Custody) Accounts() []addr.Address {
	out := make([]addr.Address, 0, len(c.slots))
	for a := range c.slots {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Snapshot returns a copy of the slot map for transactional staging.
func (c *Custody) Snapshot() map[addr.Address]SignerCapability {
	out := make(map[addr.Address]SignerCapability, len(c.slots))
	for k, v := range c.slots {
		out[k] = v
	}
	return out
}

// Restore replaces the slot map with a previously taken snapshot.
func (c *Custody) Restore(snap map[addr.Address]SignerCapability) {
	c.slots = make(map[addr.Address]SignerCapability, len(snap))
	for k, v := range snap {
		c.slots[k] = v
	}
}
