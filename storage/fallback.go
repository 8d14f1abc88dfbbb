package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// FallbackStore reads through an ordered list of stores.
//
// Retrieval order is the slice order in Stores; callers MUST supply a fixed
// order, which keeps hydration deterministic and the retrieval strategy
// explicit. Put writes only to the first store.
type FallbackStore struct {
	Stores []Store
}

var _ Store = FallbackStore{}

func (f FallbackStore) Put(bytes []byte) (cid.Cid, error) {
	if len(f.Stores) == 0 {
		return cid.Undef, errors.New("storage: FallbackStore has no stores")
	}
	return f.Stores[0].Put(bytes)
}

func (f FallbackStore) Get(id cid.Cid) ([]byte, error) {
	for _, s := range f.Stores {
		b, err := s.Get(id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (f FallbackStore) Has(id cid.Cid) bool {
	for _, s := range f.Stores {
		if s.Has(id) {
			return true
		}
	}
	return false
}
