package deploy

import (
	"fmt"

	"xdao.co/raforge/addr"
	"xdao.co/raforge/ledger"
)

// BatchPublish publishes each (metadatas[i], moduleSets[i]) pair to account
// in strict ascending index order.
//
// The caller is authorized once and one signer is derived for the whole
// batch. The batch is atomic at the transaction boundary: all pairs apply
// and all events emit, or none do.
func (m *Manager) BatchPublish(caller, account addr.Address, metadatas [][]byte, moduleSets [][][]byte) error {
	return m.run(func(tx *ledger.Tx) error {
		return m.batchPublish(tx, caller, account, metadatas, moduleSets)
	})
}

func (m *Manager) batchPublish(tx *ledger.Tx, caller, account addr.Address, metadatas [][]byte, moduleSets [][][]byte) error {
	if len(metadatas) != len(moduleSets) {
		return newError(KindInputValidation, CodeLengthMismatch,
			fmt.Sprintf("%d metadata blobs but %d module sets", len(metadatas), len(moduleSets)))
	}
	if err := m.requireAdmin(caller, account, tx); err != nil {
		return err
	}
	signer, err := m.custody.Borrow(account)
	if err != nil {
		return wrapError(KindStateConflict, CodeMissingAdminResource,
			fmt.Sprintf("no signer capability for %s", account), err)
	}
	for i := range metadatas {
		if err := m.publishAs(tx, signer, metadatas[i], moduleSets[i]); err != nil {
			return err
		}
	}
	return nil
}

// BatchMaterializeAndPublish ensures (caller, seed) is materialized, then
// batch-publishes to the derived account. Materialization is idempotent
// here: an existing account is used as-is.
func (m *Manager) BatchMaterializeAndPublish(caller addr.Address, seed []byte, metadatas [][]byte, moduleSets [][][]byte) (addr.Address, error) {
	account := addr.Derive(caller, seed)
	err := m.run(func(tx *ledger.Tx) error {
		// Validate lengths before any effect so a mismatch aborts cleanly
		// even when materialization would have been the first mutation.
		if len(metadatas) != len(moduleSets) {
			return newError(KindInputValidation, CodeLengthMismatch,
				fmt.Sprintf("%d metadata blobs but %d module sets", len(metadatas), len(moduleSets)))
		}
		if !tx.Exists(account) {
			if err := m.materialize(tx, caller, account, false); err != nil {
				return err
			}
		}
		return m.batchPublish(tx, caller, account, metadatas, moduleSets)
	})
	if err != nil {
		return addr.Zero, err
	}
	return account, nil
}
