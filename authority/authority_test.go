package authority

import (
	"errors"
	"testing"

	"xdao.co/raforge/addr"
)

var (
	account = addr.MustParse("0x100")
	alice   = addr.MustParse("0xa11ce")
	bob     = addr.MustParse("0xb0b")
	carol   = addr.MustParse("0xca401")
)

func TestInitializeOnce(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := r.Initialize(account, bob); !errors.Is(err, ErrDuplicateInit) {
		t.Fatalf("second Initialize = %v, want ErrDuplicateInit", err)
	}
	got, err := r.Admin(account)
	if err != nil {
		t.Fatalf("Admin: %v", err)
	}
	if got != alice {
		t.Fatalf("admin = %s, want %s", got, alice)
	}
}

func TestBeginTransferRequiresAdmin(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := r.BeginTransfer(bob, account, carol); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("BeginTransfer by non-admin = %v, want ErrNotAdmin", err)
	}
	role, err := r.Role(account)
	if err != nil {
		t.Fatalf("Role: %v", err)
	}
	if role.PendingAdmin != nil {
		t.Fatalf("failed BeginTransfer left a pending admin")
	}
}

func TestAcceptWithoutPending(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := r.AcceptTransfer(bob, account); !errors.Is(err, ErrPendingNotSet) {
		t.Fatalf("AcceptTransfer = %v, want ErrPendingNotSet", err)
	}
}

func TestOnlyNomineeAccepts(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := r.BeginTransfer(alice, account, bob); err != nil {
		t.Fatalf("BeginTransfer: %v", err)
	}
	// Neither the current admin nor a stranger may accept.
	if _, err := r.AcceptTransfer(alice, account); !errors.Is(err, ErrNotPendingAdmin) {
		t.Fatalf("AcceptTransfer by admin = %v, want ErrNotPendingAdmin", err)
	}
	if _, err := r.AcceptTransfer(carol, account); !errors.Is(err, ErrNotPendingAdmin) {
		t.Fatalf("AcceptTransfer by stranger = %v, want ErrNotPendingAdmin", err)
	}
	// Admin stays alice until bob accepts.
	if got, _ := r.Admin(account); got != alice {
		t.Fatalf("admin changed before acceptance: %s", got)
	}
	prev, err := r.AcceptTransfer(bob, account)
	if err != nil {
		t.Fatalf("AcceptTransfer by nominee: %v", err)
	}
	if prev != alice {
		t.Fatalf("previous admin = %s, want %s", prev, alice)
	}
	if got, _ := r.Admin(account); got != bob {
		t.Fatalf("admin = %s, want %s", got, bob)
	}
	role, _ := r.Role(account)
	if role.PendingAdmin != nil {
		t.Fatalf("pending admin not cleared after acceptance")
	}
}

func TestReNominationReplacesPending(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := r.BeginTransfer(alice, account, bob); err != nil {
		t.Fatalf("BeginTransfer: %v", err)
	}
	if err := r.BeginTransfer(alice, account, carol); err != nil {
		t.Fatalf("re-nominate: %v", err)
	}
	if _, err := r.AcceptTransfer(bob, account); !errors.Is(err, ErrNotPendingAdmin) {
		t.Fatalf("stale nominee accepted: %v", err)
	}
	if _, err := r.AcceptTransfer(carol, account); err != nil {
		t.Fatalf("AcceptTransfer: %v", err)
	}
}

func TestCancelTransfer(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := r.CancelTransfer(alice, account); !errors.Is(err, ErrPendingNotSet) {
		t.Fatalf("CancelTransfer with nothing open = %v, want ErrPendingNotSet", err)
	}
	if err := r.BeginTransfer(alice, account, bob); err != nil {
		t.Fatalf("BeginTransfer: %v", err)
	}
	if err := r.CancelTransfer(bob, account); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("CancelTransfer by nominee = %v, want ErrNotAdmin", err)
	}
	if err := r.CancelTransfer(alice, account); err != nil {
		t.Fatalf("CancelTransfer: %v", err)
	}
	if _, err := r.AcceptTransfer(bob, account); !errors.Is(err, ErrPendingNotSet) {
		t.Fatalf("accept after cancel = %v, want ErrPendingNotSet", err)
	}
}

func TestDestroyIsTerminal(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	last, err := r.Destroy(account)
	if err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if last != alice {
		t.Fatalf("last admin = %s, want %s", last, alice)
	}
	if _, err := r.Admin(account); !errors.Is(err, ErrMissing) {
		t.Fatalf("Admin after Destroy = %v, want ErrMissing", err)
	}
	if err := r.BeginTransfer(alice, account, bob); !errors.Is(err, ErrMissing) {
		t.Fatalf("BeginTransfer after Destroy = %v, want ErrMissing", err)
	}
}

func TestSnapshotRestoreIsDeep(t *testing.T) {
	r := NewRegistry()
	if err := r.Initialize(account, alice); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := r.BeginTransfer(alice, account, bob); err != nil {
		t.Fatalf("BeginTransfer: %v", err)
	}
	snap := r.Snapshot()
	if _, err := r.AcceptTransfer(bob, account); err != nil {
		t.Fatalf("AcceptTransfer: %v", err)
	}
	r.Restore(snap)
	if got, _ := r.Admin(account); got != alice {
		t.Fatalf("restored admin = %s, want %s", got, alice)
	}
	role, _ := r.Role(account)
	if role.PendingAdmin == nil || *role.PendingAdmin != bob {
		t.Fatalf("restored pending admin lost")
	}
}
