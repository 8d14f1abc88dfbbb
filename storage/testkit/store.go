// Package testkit provides a conformance suite that every artifact store
// backend must pass.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/raforge/artifact"
	"xdao.co/raforge/storage"
)

// NewStore constructs a fresh, empty store instance for a test.
// The returned store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.Store

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		st := newStore(t)
		want := []byte("hello, raforge storage")

		id, err := st.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := artifact.CID(want)
		if err != nil {
			t.Fatalf("CID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := st.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}

		gotID, err := artifact.CID(got)
		if err != nil {
			t.Fatalf("CID(got) failed: %v", err)
		}
		if gotID != id {
			t.Fatalf("Get returned bytes not matching requested CID")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		st := newStore(t)
		b := []byte("same bytes")

		id1, err := st.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := st.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		st := newStore(t)
		b := []byte("missing")
		id, err := artifact.CID(b)
		if err != nil {
			t.Fatalf("CID failed: %v", err)
		}

		if st.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		_, err = st.Get(id)
		if !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		_, err = st.Put(b)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !st.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("ArtifactRoundTrip", func(t *testing.T) {
		st := newStore(t)
		a := artifact.Artifact{
			Name:     "holder_pkg",
			Metadata: []byte{0x01, 0x02, 0x03},
			Modules:  [][]byte{[]byte("module-a"), []byte("module-b")},
		}
		enc := artifact.Encode(a)

		id, err := st.Put(enc)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := st.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		dec, err := artifact.Decode(got)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if dec.Name != a.Name || len(dec.Modules) != len(a.Modules) {
			t.Fatalf("decoded artifact mismatch: %+v", dec)
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		st := newStore(t)
		var undef cid.Cid
		if st.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := st.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})
}
