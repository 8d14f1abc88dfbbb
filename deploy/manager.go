// Package deploy implements the code-deployment lifecycle for derived
// resource accounts: materialization, publish/upgrade, freeze, admin
// transfer, retirement, and ordered batch publication.
//
// A holder moves Unpublished -> Published (first publish) -> Published
// (upgrades, in place) -> Frozen (terminal). Admin-authority substates
// compose orthogonally and are handled by the authority package.
//
// Every operation runs inside one ledger transaction: it either commits all
// of its effects and events, or aborts with none.
package deploy

import (
	"fmt"

	"xdao.co/raforge/addr"
	"xdao.co/raforge/authority"
	"xdao.co/raforge/capability"
	"xdao.co/raforge/ledger"
)

// Options configures a Manager.
type Options struct {
	// ObjectDeployment enables the materialization path that attaches an
	// object-scoped ExtendHandle to the holder. When false, that path fails
	// with FeatureUnavailable.
	ObjectDeployment bool

	// AllowRematerialize permits re-materializing an account whose authority
	// was retired. When false (the default), retirement permanently poisons
	// the (origin, seed) pair.
	AllowRematerialize bool
}

// Manager orchestrates the deployment lifecycle over one host ledger.
type Manager struct {
	ledger  *ledger.Ledger
	custody *capability.Custody
	roles   *authority.Registry
	holders *holders
	handles map[addr.Address]capability.ExtendHandle
	retired map[addr.Address]struct{}
	opts    Options
}

// NewManager returns a Manager bound to l.
func NewManager(l *ledger.Ledger, opts Options) *Manager {
	return &Manager{
		ledger:  l,
		custody: capability.NewCustody(),
		roles:   authority.NewRegistry(),
		holders: newHolders(),
		handles: make(map[addr.Address]capability.ExtendHandle),
		retired: make(map[addr.Address]struct{}),
		opts:    opts,
	}
}

// ComputeAddress returns the account address for (origin, seed) without
// touching any state. Always available, no authorization required.
func (m *Manager) ComputeAddress(origin addr.Address, seed []byte) addr.Address {
	return addr.Derive(origin, seed)
}

// run executes fn transactionally. Manager-owned stores are snapshotted up
// front and restored if the transaction aborts, so a failed operation has
// zero partial effect.
func (m *Manager) run(fn func(tx *ledger.Tx) error) error {
	return m.ledger.Execute(func(tx *ledger.Tx) error {
		custodySnap := m.custody.Snapshot()
		roleSnap := m.roles.Snapshot()
		holderSnap := m.holders.snapshot()
		handleSnap := make(map[addr.Address]capability.ExtendHandle, len(m.handles))
		for k, v := range m.handles {
			handleSnap[k] = v
		}
		retiredSnap := make(map[addr.Address]struct{}, len(m.retired))
		for k := range m.retired {
			retiredSnap[k] = struct{}{}
		}
		tx.OnAbort(func() {
			m.custody.Restore(custodySnap)
			m.roles.Restore(roleSnap)
			m.holders.restore(holderSnap)
			m.handles = handleSnap
			m.retired = retiredSnap
		})
		return fn(tx)
	})
}

// Materialize creates the account for (origin, seed), stores its signer
// capability, and initializes origin as admin.
//
// Strict convention: fails with AlreadyExists when the account exists. Use
// MaterializeIfAbsent for the ensure-exists convention.
func (m *Manager) Materialize(origin addr.Address, seed []byte) (addr.Address, error) {
	account := addr.Derive(origin, seed)
	err := m.run(func(tx *ledger.Tx) error {
		return m.materialize(tx, origin, account, false)
	})
	if err != nil {
		return addr.Zero, err
	}
	return account, nil
}

// MaterializeIfAbsent materializes (origin, seed) only when the account does
// not already exist. At most one materialization happens across any number
// of invocations; an existing account is returned as-is.
func (m *Manager) MaterializeIfAbsent(origin addr.Address, seed []byte) (addr.Address, error) {
	account := addr.Derive(origin, seed)
	err := m.run(func(tx *ledger.Tx) error {
		if tx.Exists(account) {
			if _, poisoned := m.retired[account]; poisoned && m.opts.AllowRematerialize {
				return m.rematerialize(tx, origin, account)
			}
			return nil
		}
		return m.materialize(tx, origin, account, false)
	})
	if err != nil {
		return addr.Zero, err
	}
	return account, nil
}

// MaterializeWithHandle is the object-mode materialization path: identical
// to Materialize, plus an ExtendHandle attached to the holder.
//
// Fails with FeatureUnavailable unless the manager was configured with
// ObjectDeployment.
func (m *Manager) MaterializeWithHandle(origin addr.Address, seed []byte) (addr.Address, capability.ExtendHandle, error) {
	if !m.opts.ObjectDeployment {
		return addr.Zero, capability.ExtendHandle{}, newError(KindInputValidation, CodeFeatureUnavailable,
			"object deployment mode is not enabled on this manager")
	}
	account := addr.Derive(origin, seed)
	var handle capability.ExtendHandle
	err := m.run(func(tx *ledger.Tx) error {
		if err := m.materialize(tx, origin, account, true); err != nil {
			return err
		}
		handle = m.handles[account]
		return nil
	})
	if err != nil {
		return addr.Zero, capability.ExtendHandle{}, err
	}
	return account, handle, nil
}

func (m *Manager) materialize(tx *ledger.Tx, origin, account addr.Address, withHandle bool) error {
	if err := tx.CreateAccount(account); err != nil {
		return wrapError(KindStateConflict, CodeAlreadyExists,
			fmt.Sprintf("account %s already exists", account), err)
	}
	if err := m.custody.Store(capability.Mint(account)); err != nil {
		return wrapError(KindStateConflict, CodeDuplicateCapability,
			fmt.Sprintf("capability already stored for %s", account), err)
	}
	if err := m.roles.Initialize(account, origin); err != nil {
		return wrapError(KindStateConflict, CodeAlreadyExists,
			fmt.Sprintf("admin role already initialized for %s", account), err)
	}
	if withHandle {
		m.handles[account] = capability.AttachExtendHandle(account)
	}
	tx.Emit(ledger.Event{Type: ledger.TypeMaterialized, Account: account, NewAdmin: origin})
	return nil
}

// rematerialize re-mints capability and role for a retired account. Only
// reachable when AllowRematerialize is set.
func (m *Manager) rematerialize(tx *ledger.Tx, origin, account addr.Address) error {
	if err := m.custody.Store(capability.Mint(account)); err != nil {
		return wrapError(KindStateConflict, CodeDuplicateCapability,
			fmt.Sprintf("capability already stored for %s", account), err)
	}
	if err := m.roles.Initialize(account, origin); err != nil {
		return wrapError(KindStateConflict, CodeAlreadyExists,
			fmt.Sprintf("admin role already initialized for %s", account), err)
	}
	delete(m.retired, account)
	tx.Emit(ledger.Event{Type: ledger.TypeMaterialized, Account: account, NewAdmin: origin})
	return nil
}

// requireAdmin maps authority failures onto the operation error taxonomy.
func (m *Manager) requireAdmin(caller, account addr.Address, tx *ledger.Tx) error {
	if !tx.Exists(account) {
		return newError(KindNotFound, CodeCodeObjectNotFound,
			fmt.Sprintf("account %s is not materialized", account))
	}
	err := m.roles.RequireAdmin(caller, account)
	switch {
	case err == nil:
		return nil
	case err == authority.ErrMissing:
		return wrapError(KindStateConflict, CodeMissingAdminResource,
			fmt.Sprintf("no admin role for %s", account), err)
	default:
		return wrapError(KindAuthorization, CodeNotAdmin,
			fmt.Sprintf("%s is not admin of %s", caller, account), err)
	}
}

// Publish deploys (metadata, modules) to account, or upgrades the holder in
// place when it is already published.
//
// Admin-gated. Module order is preserved exactly as given. Fails with
// FrozenImmutable once the holder is frozen, with no exception for the
// original admin.
func (m *Manager) Publish(caller, account addr.Address, metadata []byte, modules [][]byte) error {
	return m.run(func(tx *ledger.Tx) error {
		return m.publish(tx, caller, account, metadata, modules)
	})
}

func (m *Manager) publish(tx *ledger.Tx, caller, account addr.Address, metadata []byte, modules [][]byte) error {
	if err := m.requireAdmin(caller, account, tx); err != nil {
		return err
	}
	signer, err := m.custody.Borrow(account)
	if err != nil {
		return wrapError(KindStateConflict, CodeMissingAdminResource,
			fmt.Sprintf("no signer capability for %s", account), err)
	}
	return m.publishAs(tx, signer, metadata, modules)
}

// publishAs performs the holder mutation under an already-derived signer.
// Both the admin path and the extend-handle path funnel through here.
func (m *Manager) publishAs(tx *ledger.Tx, signer capability.Signer, metadata []byte, modules [][]byte) error {
	account := signer.Account()
	existing, published := m.holders.get(account)
	if published {
		if existing.Immutable {
			return newError(KindStateConflict, CodeFrozenImmutable,
				fmt.Sprintf("holder %s is frozen", account))
		}
		existing.Metadata = append([]byte(nil), metadata...)
		existing.Modules = cloneModules(modules)
		tx.Emit(ledger.Event{Type: ledger.TypeUpgrade, Account: account})
		return nil
	}
	m.holders.put(account, &Holder{
		Metadata: append([]byte(nil), metadata...),
		Modules:  cloneModules(modules),
	})
	tx.Emit(ledger.Event{Type: ledger.TypePublish, Account: account})
	return nil
}

// Freeze irreversibly marks account's holder immutable. Admin-gated.
// There is no unfreeze: freeze-at-will would defeat the immutability
// guarantee the flag exists to provide.
func (m *Manager) Freeze(caller, account addr.Address) error {
	return m.run(func(tx *ledger.Tx) error {
		if err := m.requireAdmin(caller, account, tx); err != nil {
			return err
		}
		h, ok := m.holders.get(account)
		if !ok {
			return newError(KindNotFound, CodeCodeObjectNotFound,
				fmt.Sprintf("nothing published at %s", account))
		}
		if h.Immutable {
			return newError(KindStateConflict, CodeFrozenImmutable,
				fmt.Sprintf("holder %s is already frozen", account))
		}
		h.Immutable = true
		tx.Emit(ledger.Event{Type: ledger.TypeFreeze, Account: account})
		return nil
	})
}

// BeginTransfer opens a two-step admin handover of account to next.
func (m *Manager) BeginTransfer(caller, account, next addr.Address) error {
	return m.run(func(tx *ledger.Tx) error {
		if err := m.requireAdmin(caller, account, tx); err != nil {
			return err
		}
		if err := m.roles.BeginTransfer(caller, account, next); err != nil {
			return wrapError(KindAuthorization, CodeNotAdmin,
				fmt.Sprintf("%s is not admin of %s", caller, account), err)
		}
		tx.Emit(ledger.Event{Type: ledger.TypeTransferStarted, Account: account, OldAdmin: caller, NewAdmin: next})
		return nil
	})
}

// AcceptTransfer completes an open handover. Only the nominee may call.
func (m *Manager) AcceptTransfer(caller, account addr.Address) error {
	return m.run(func(tx *ledger.Tx) error {
		if !tx.Exists(account) {
			return newError(KindNotFound, CodeCodeObjectNotFound,
				fmt.Sprintf("account %s is not materialized", account))
		}
		previous, err := m.roles.AcceptTransfer(caller, account)
		switch err {
		case nil:
		case authority.ErrMissing:
			return wrapError(KindStateConflict, CodeMissingAdminResource,
				fmt.Sprintf("no admin role for %s", account), err)
		case authority.ErrPendingNotSet:
			return wrapError(KindAuthorization, CodePendingNotSet,
				fmt.Sprintf("no pending transfer for %s", account), err)
		default:
			return wrapError(KindAuthorization, CodeNotPendingAdmin,
				fmt.Sprintf("%s is not the pending admin of %s", caller, account), err)
		}
		tx.Emit(ledger.Event{Type: ledger.TypeTransferCompleted, Account: account, OldAdmin: previous, NewAdmin: caller})
		return nil
	})
}

// RetireAuthority destroys account's admin role and signer capability.
//
// Admin-gated and irreversible through this manager: no publish, freeze, or
// transfer can ever succeed for account again. An attached ExtendHandle is
// a separate capability and remains live.
func (m *Manager) RetireAuthority(caller, account addr.Address) error {
	return m.run(func(tx *ledger.Tx) error {
		if err := m.requireAdmin(caller, account, tx); err != nil {
			return err
		}
		last, err := m.roles.Destroy(account)
		if err != nil {
			return wrapError(KindStateConflict, CodeMissingAdminResource,
				fmt.Sprintf("no admin role for %s", account), err)
		}
		if err := m.custody.Destroy(account); err != nil {
			return wrapError(KindStateConflict, CodeMissingAdminResource,
				fmt.Sprintf("no signer capability for %s", account), err)
		}
		m.retired[account] = struct{}{}
		tx.Emit(ledger.Event{Type: ledger.TypeRoleDestroyed, Account: account, OldAdmin: last})
		return nil
	})
}

// ExtendUpgrade mutates a holder through its object-scoped handle.
//
// This path is independent of admin authority and survives retirement; it
// still respects the freeze flag.
func (m *Manager) ExtendUpgrade(handle capability.ExtendHandle, metadata []byte, modules [][]byte) error {
	return m.run(func(tx *ledger.Tx) error {
		live, ok := m.handles[handle.Holder()]
		if !ok || !handle.Valid() || live != handle {
			return newError(KindNotFound, CodeCodeObjectNotFound,
				fmt.Sprintf("no extend handle attached to %s", handle.Holder()))
		}
		signer, err := capability.DeriveHolderSigner(handle)
		if err != nil {
			return wrapError(KindStateConflict, CodeMissingAdminResource,
				"extend handle is not valid", err)
		}
		return m.publishAs(tx, signer, metadata, modules)
	})
}

// Holder returns a copy of account's published contents.
func (m *Manager) Holder(account addr.Address) (Holder, bool) {
	h, ok := m.holders.get(account)
	if !ok {
		return Holder{}, false
	}
	return *h.clone(), true
}

// Admin returns the current admin of account.
func (m *Manager) Admin(account addr.Address) (addr.Address, error) {
	a, err := m.roles.Admin(account)
	if err != nil {
		return addr.Zero, wrapError(KindStateConflict, CodeMissingAdminResource,
			fmt.Sprintf("no admin role for %s", account), err)
	}
	return a, nil
}

// Retired reports whether account's authority has been retired.
func (m *Manager) Retired(account addr.Address) bool {
	_, ok := m.retired[account]
	return ok
}

func cloneModules(modules [][]byte) [][]byte {
	out := make([][]byte, len(modules))
	for i, mod := range modules {
		out[i] = append([]byte(nil), mod...)
	}
	return out
}
