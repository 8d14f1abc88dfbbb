// Package ledger simulates the host execution environment the deployment
// core depends on: account existence, strictly serial execution, an
// all-or-nothing transaction boundary, and an append-only event log.
//
// Contract:
//   - Execution is single-threaded and serial; operations never interleave.
//   - A transaction either commits every staged effect and event, or aborts
//     with zero externally observable state change.
//   - Event emission order matches operation order. Delivery to subscribers
//     is out of scope; the log only guarantees ordered emission.
package ledger

import (
	"errors"
	"sort"

	"xdao.co/raforge/addr"
)

var (
	// ErrAccountExists is returned when creating an account that exists.
	ErrAccountExists = errors.New("ledger: account already exists")
	// ErrTxInProgress is returned by Execute when called re-entrantly.
	ErrTxInProgress = errors.New("ledger: transaction already in progress")
)

// Ledger is an in-memory host ledger.
type Ledger struct {
	accounts map[addr.Address]struct{}
	log      []Event
	inTx     bool
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{accounts: make(map[addr.Address]struct{})}
}

// Exists reports whether account has been created.
func (l *Ledger) Exists(account addr.Address) bool {
	_, ok := l.accounts[account]
	return ok
}

// Accounts returns all created accounts, sorted.
func (l *Ledger) Accounts() []addr.Address {
	out := make([]addr.Address, 0, len(l.accounts))
	for a := range l.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Events returns a copy of the committed event log in emission order.
func (l *Ledger) Events() []Event {
	return append([]Event(nil), l.log...)
}

// Tx is one in-flight transaction. Effects and events are staged here and
// reach the ledger only on commit.
type Tx struct {
	l        *Ledger
	created  []addr.Address
	staged   []Event
	rollback []func()
}

// Execute runs fn inside a transaction.
//
// If fn returns nil, staged account creations and events commit in order.
// Any error discards every staged effect, runs registered rollbacks in
// reverse order, and surfaces to the caller verbatim.
func (l *Ledger) Execute(fn func(tx *Tx) error) error {
	if l.inTx {
		return ErrTxInProgress
	}
	l.inTx = true
	tx := &Tx{l: l}
	err := fn(tx)
	l.inTx = false
	if err != nil {
		for i := len(tx.rollback) - 1; i >= 0; i-- {
			tx.rollback[i]()
		}
		return err
	}
	for _, a := range tx.created {
		l.accounts[a] = struct{}{}
	}
	next := uint64(len(l.log))
	for _, ev := range tx.staged {
		ev.Seq = next
		next++
		l.log = append(l.log, ev)
	}
	return nil
}

// CreateAccount stages creation of account.
//
// Fails with ErrAccountExists when the account exists, committed or already
// staged in this transaction.
func (tx *Tx) CreateAccount(account addr.Address) error {
	if tx.l.Exists(account) {
		return ErrAccountExists
	}
	for _, a := range tx.created {
		if a == account {
			return ErrAccountExists
		}
	}
	tx.created = append(tx.created, account)
	return nil
}

// Exists reports account existence as observed inside the transaction,
// staged creations included.
func (tx *Tx) Exists(account addr.Address) bool {
	if tx.l.Exists(account) {
		return true
	}
	for _, a := range tx.created {
		if a == account {
			return true
		}
	}
	return false
}

// Emit stages an event. Staged events are discarded on abort.
func (tx *Tx) Emit(ev Event) {
	tx.staged = append(tx.staged, ev)
}

// OnAbort registers a rollback run only when the transaction aborts.
// Components with state outside the ledger restore their snapshots here.
func (tx *Tx) OnAbort(restore func()) {
	if restore != nil {
		tx.rollback = append(tx.rollback, restore)
	}
}
