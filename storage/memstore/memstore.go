// Package memstore is an in-memory artifact store, used by tests and by the
// daemon when no durable backend is configured.
package memstore

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/raforge/artifact"
	"xdao.co/raforge/storage"
)

type Store struct {
	mu   sync.RWMutex
	blob map[cid.Cid][]byte
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{blob: make(map[cid.Cid][]byte)}
}

func (s *Store) Put(b []byte) (cid.Cid, error) {
	id, err := artifact.CID(b)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blob[id]; !ok {
		cp := make([]byte, len(b))
		copy(cp, b)
		s.blob[id] = cp
	}
	return id, nil
}

func (s *Store) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	s.mu.RLock()
	b, ok := s.blob[id]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	s.mu.RLock()
	_, ok := s.blob[id]
	s.mu.RUnlock()
	return ok
}

// Len reports the number of stored artifacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blob)
}
