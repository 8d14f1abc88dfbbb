// Package authority implements the per-account admin role and its two-step
// transfer protocol.
//
// Each materialized account carries exactly one Role record in a keyed
// registry. The only sanctioned way to change the authorized admin is
// BeginTransfer followed by AcceptTransfer by the nominee: a single-step
// handover has no recovery path when the next admin is mistyped or
// unreachable, so it does not exist here.
package authority

import (
	"errors"
	"sort"

	"xdao.co/raforge/addr"
)

var (
	// ErrDuplicateInit is returned when a role already exists for the account.
	ErrDuplicateInit = errors.New("authority: role already initialized")
	// ErrMissing is returned when no role record exists for the account.
	ErrMissing = errors.New("authority: no role for account")
	// ErrNotAdmin is returned when the caller is not the current admin.
	ErrNotAdmin = errors.New("authority: caller is not admin")
	// ErrPendingNotSet is returned by AcceptTransfer when no transfer is open.
	ErrPendingNotSet = errors.New("authority: no pending transfer")
	// ErrNotPendingAdmin is returned when the caller is not the nominee.
	ErrNotPendingAdmin = errors.New("authority: caller is not the pending admin")
)

// Role is the admin record for one account.
//
// Admin is always set once the role is initialized. PendingAdmin is non-nil
// only between BeginTransfer and its matching AcceptTransfer.
type Role struct {
	Admin        addr.Address
	PendingAdmin *addr.Address
}

// Registry is the keyed store mapping account -> Role.
//
// Mutation happens only through the defined transitions; there is no
// ambient shared state. Operations are serial per the host ledger, so the
// registry carries no locking.
type Registry struct {
	roles map[addr.Address]Role
}

// NewRegistry returns an empty role registry.
func NewRegistry() *Registry {
	return &Registry{roles: make(map[addr.Address]Role)}
}

// Initialize creates the role for account with admin as the initial admin.
func (r *Registry) Initialize(account, admin addr.Address) error {
	if _, exists := r.roles[account]; exists {
		return ErrDuplicateInit
	}
	r.roles[account] = Role{Admin: admin}
	return nil
}

// Admin returns the current admin for account.
func (r *Registry) Admin(account addr.Address) (addr.Address, error) {
	role, ok := r.roles[account]
	if !ok {
		return addr.Zero, ErrMissing
	}
	return role.Admin, nil
}

// Role returns a copy of the role record for account.
func (r *Registry) Role(account addr.Address) (Role, error) {
	role, ok := r.roles[account]
	if !ok {
		return Role{}, ErrMissing
	}
	if role.PendingAdmin != nil {
		p := *role.PendingAdmin
		role.PendingAdmin = &p
	}
	return role, nil
}

// RequireAdmin fails with ErrNotAdmin unless caller is account's admin.
func (r *Registry) RequireAdmin(caller, account addr.Address) error {
	role, ok := r.roles[account]
	if !ok {
		return ErrMissing
	}
	if role.Admin != caller {
		return ErrNotAdmin
	}
	return nil
}

// BeginTransfer opens a transfer of account's admin role to next.
//
// Only the current admin may call. An already-open transfer is replaced:
// re-nominating is the admin's recovery path for a mistyped nominee.
func (r *Registry) BeginTransfer(caller, account, next addr.Address) error {
	role, ok := r.roles[account]
	if !ok {
		return ErrMissing
	}
	if role.Admin != caller {
		return ErrNotAdmin
	}
	n := next
	role.PendingAdmin = &n
	r.roles[account] = role
	return nil
}

// AcceptTransfer completes an open transfer. Only the nominee may call.
//
// On success the caller becomes admin and the pending slot clears.
func (r *Registry) AcceptTransfer(caller, account addr.Address) (previous addr.Address, err error) {
	role, ok := r.roles[account]
	if !ok {
		return addr.Zero, ErrMissing
	}
	if role.PendingAdmin == nil {
		return addr.Zero, ErrPendingNotSet
	}
	if *role.PendingAdmin != caller {
		return addr.Zero, ErrNotPendingAdmin
	}
	previous = role.Admin
	role.Admin = caller
	role.PendingAdmin = nil
	r.roles[account] = role
	return previous, nil
}

// CancelTransfer clears an open transfer. Only the current admin may call.
func (r *Registry) CancelTransfer(caller, account addr.Address) error {
	role, ok := r.roles[account]
	if !ok {
		return ErrMissing
	}
	if role.Admin != caller {
		return ErrNotAdmin
	}
	if role.PendingAdmin == nil {
		return ErrPendingNotSet
	}
	role.PendingAdmin = nil
	r.roles[account] = role
	return nil
}

// Destroy removes the role record. Terminal: the account can never again
// pass an admin check through this registry.
//
// Authorization is the wrapping component's responsibility; Destroy itself
// only requires that the role exists.
func (r *Registry) Destroy(account addr.Address) (lastAdmin addr.Address, err error) {
	role, ok := r.roles[account]
	if !ok {
		return addr.Zero, ErrMissing
	}
	delete(r.roles, account)
	return role.Admin, nil
}

// Accounts returns all accounts with live roles, sorted.
func (r *Registry) Accounts() []addr.Address {
	out := make([]addr.Address, 0, len(r.roles))
	for a := range r.roles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Snapshot returns a copy of the registry state for transactional staging.
func (r *Registry) Snapshot() map[addr.Address]Role {
	out := make(map[addr.Address]Role, len(r.roles))
	for k, v := range r.roles {
		if v.PendingAdmin != nil {
			p := *v.PendingAdmin
			v.PendingAdmin = &p
		}
		out[k] = v
	}
	return out
}

// Restore replaces registry state with a previously taken snapshot.
func (r *Registry) Restore(snap map[addr.Address]Role) {
	r.roles = make(map[addr.Address]Role, len(snap))
	for k, v := range snap {
		if v.PendingAdmin != nil {
			p := *v.PendingAdmin
			v.PendingAdmin = &p
		}
		r.roles[k] = v
	}
}
