package memstore

import (
	"testing"

	"xdao.co/raforge/storage"
	"xdao.co/raforge/storage/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		t.Helper()
		return New()
	})
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	st := New()
	id, err := st.Put([]byte("abc"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := st.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got[0] = 'X'

	again, err := st.Get(id)
	if err != nil {
		t.Fatalf("Get(2) failed: %v", err)
	}
	if string(again) != "abc" {
		t.Fatalf("stored bytes were mutated through Get result: %q", again)
	}
	if st.Len() != 1 {
		t.Fatalf("Len: got %d want 1", st.Len())
	}
}
