package bundle_test

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/raforge/artifact"
	"xdao.co/raforge/storage"
	"xdao.co/raforge/storage/bundle"
	"xdao.co/raforge/storage/memstore"
)

func TestBundle_ExportIsDeterministic(t *testing.T) {
	st := memstore.New()

	id1, err := st.Put([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := st.Put([]byte("world"))
	if err != nil {
		t.Fatal(err)
	}

	opts := bundle.ExportOptions{
		IncludeManifest: true,
		Packages: map[string]cid.Cid{
			"launchpad": id1,
			"registry":  id2,
		},
	}

	var outA bytes.Buffer
	if err := bundle.Export(&outA, st, []cid.Cid{id2, id1}, opts); err != nil {
		t.Fatal(err)
	}
	var outB bytes.Buffer
	if err := bundle.Export(&outB, st, []cid.Cid{id1, id2}, opts); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(outA.Bytes(), outB.Bytes()) {
		t.Fatalf("expected deterministic bundle bytes")
	}
}

func TestBundle_ImportRoundTrip(t *testing.T) {
	src := memstore.New()

	payload := []byte("payload")
	id, err := src.Put(payload)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, []cid.Cid{id}, bundle.ExportOptions{IncludeManifest: true}); err != nil {
		t.Fatal(err)
	}

	dst := memstore.New()
	if err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatal(err)
	}

	got, err := dst.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestBundle_ManifestRoundTrip(t *testing.T) {
	st := memstore.New()
	id, err := st.Put([]byte("pkg bytes"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts := bundle.ExportOptions{
		IncludeManifest: true,
		Packages:        map[string]cid.Cid{"launchpad": id},
	}
	if err := bundle.Export(&buf, st, []cid.Cid{id}, opts); err != nil {
		t.Fatal(err)
	}

	m, err := bundle.ReadManifest(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("expected manifest")
	}
	if len(m.Artifacts) != 1 || m.Artifacts[0] != id {
		t.Fatalf("manifest artifacts mismatch: %v", m.Artifacts)
	}
	if m.Packages["launchpad"] != id {
		t.Fatalf("manifest packages mismatch: %v", m.Packages)
	}
}

func TestBundle_ImportRejectsCIDMismatch(t *testing.T) {
	good := []byte("good")
	goodCID, err := artifact.CID(good)
	if err != nil {
		t.Fatal(err)
	}
	otherCID, err := artifact.CID([]byte("other"))
	if err != nil {
		t.Fatal(err)
	}
	if goodCID.String() == otherCID.String() {
		t.Fatal("expected different CIDs")
	}

	// Name says otherCID but bytes are "good", so the computed CID differs.
	bundleBytes := makeDeterministicTar(t, "artifacts/"+otherCID.String(), good)

	dst := memstore.New()
	if err := bundle.Import(bytes.NewReader(bundleBytes), dst); err != storage.ErrCIDMismatch {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
}

func TestBundle_ImportRejectsUnknownEntry(t *testing.T) {
	bundleBytes := makeDeterministicTar(t, "extras/readme.txt", []byte("hi"))

	dst := memstore.New()
	if err := bundle.Import(bytes.NewReader(bundleBytes), dst); err == nil {
		t.Fatal("expected error for unknown entry")
	}
	if err := bundle.ImportWithOptions(bytes.NewReader(bundleBytes), dst, bundle.ImportOptions{IgnoreUnknown: true}); err != nil {
		t.Fatalf("IgnoreUnknown import failed: %v", err)
	}
}

func makeDeterministicTar(t *testing.T, name string, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	h := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(h); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
