package storage_test

import (
	"bytes"
	"testing"

	"xdao.co/raforge/storage"
	"xdao.co/raforge/storage/memstore"
)

func TestFallback_ReadThroughOrder(t *testing.T) {
	primary := memstore.New()
	secondary := memstore.New()

	payload := []byte("only in secondary")
	id, err := secondary.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	fb := storage.FallbackStore{Stores: []storage.Store{primary, secondary}}

	if !fb.Has(id) {
		t.Fatalf("Has: expected true via fallback")
	}
	got, err := fb.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}

	// Fallback reads never hydrate the primary.
	if primary.Has(id) {
		t.Fatalf("primary should not have been written by Get")
	}
}

func TestFallback_PutWritesFirstOnly(t *testing.T) {
	primary := memstore.New()
	secondary := memstore.New()
	fb := storage.FallbackStore{Stores: []storage.Store{primary, secondary}}

	id, err := fb.Put([]byte("written"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !primary.Has(id) {
		t.Fatalf("primary missing artifact")
	}
	if secondary.Has(id) {
		t.Fatalf("secondary should not have been written")
	}
}

func TestFallback_Empty(t *testing.T) {
	fb := storage.FallbackStore{}
	if _, err := fb.Put([]byte("x")); err == nil {
		t.Fatalf("Put on empty fallback should fail")
	}
}

func TestReplicating_PutAll(t *testing.T) {
	a := memstore.New()
	b := memstore.New()
	rs := storage.ReplicatingStore{Backends: []storage.NamedStore{
		{Name: "a", Store: a},
		{Name: "b", Store: b},
	}}

	payload := []byte("replicated")
	id, perBackend, err := rs.PutAll(payload)
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if len(perBackend) != 2 {
		t.Fatalf("per-backend map: got %d entries want 2", len(perBackend))
	}
	for name, got := range perBackend {
		if got != id {
			t.Fatalf("backend %q CID mismatch: %s vs %s", name, got, id)
		}
	}
	if !a.Has(id) || !b.Has(id) {
		t.Fatalf("artifact missing from a backend")
	}

	got, err := rs.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestReplicating_NoBackends(t *testing.T) {
	rs := storage.ReplicatingStore{}
	if _, _, err := rs.PutAll([]byte("x")); err == nil {
		t.Fatalf("PutAll with no backends should fail")
	}
}
