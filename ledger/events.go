package ledger

import "xdao.co/raforge/addr"

// Type names an externally observable transition.
type Type string

const (
	TypeMaterialized      Type = "Materialized"
	TypePublish           Type = "Publish"
	TypeUpgrade           Type = "Upgrade"
	TypeFreeze            Type = "Freeze"
	TypeTransferStarted   Type = "TransferStarted"
	TypeTransferCompleted Type = "TransferCompleted"
	TypeRoleDestroyed     Type = "RoleDestroyed"
)

// Event is one append-only log entry.
//
// Account is always the affected derived account. OldAdmin/NewAdmin are set
// only on transfer events.
type Event struct {
	Seq      uint64
	Type     Type
	Account  addr.Address
	OldAdmin addr.Address
	NewAdmin addr.Address
}
