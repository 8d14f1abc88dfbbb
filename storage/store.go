// Package storage defines content-addressed storage of built deployment
// artifacts and composites over multiple backends.
//
// The deployment planner stores every built artifact here and references it
// from plans and payload files by CID, so a payload can always be traced
// back to the exact bytes that produced it.
package storage

import "github.com/ipfs/go-cid"

// Store is a minimal content-addressed artifact store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (callers supply canonical artifact bytes).
// - Get MUST return ErrNotFound when the CID is absent.
type Store interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
