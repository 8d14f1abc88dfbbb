// Package artifact defines the built-package artifact consumed by publish
// operations: one metadata blob plus an ordered list of opaque module blobs.
//
// Artifacts are encoded into a single deterministic byte form so they can be
// stored content-addressed and referenced by CID from deployment plans. The
// core never interprets metadata or module bytes; only lengths and ordering
// are validated.
package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// FormatVersion is the current artifact encoding version.
const FormatVersion = 1

// magic prefixes every encoded artifact.
var magic = []byte("raforge-artifact")

// maxBlobLen bounds any single length field during decode. Fail-closed
// guard against corrupted or hostile inputs.
const maxBlobLen = 1 << 30

var (
	// ErrMalformed is returned when bytes do not decode as an artifact.
	ErrMalformed = errors.New("artifact: malformed encoding")
)

// Artifact is one built package ready for publication.
type Artifact struct {
	// Name is the package name, informational only.
	Name string
	// Metadata is the serialized package metadata blob.
	Metadata []byte
	// Modules are the executable module blobs in publication order.
	// Order is significant and preserved exactly.
	Modules [][]byte
}

// Encode renders a into its canonical byte form.
//
// The encoding is deterministic: identical artifacts always produce
// identical bytes, so the artifact CID is stable.
func Encode(a Artifact) []byte {
	var buf bytes.Buffer
	buf.Write(magic)
	writeUint32(&buf, FormatVersion)
	writeBlob(&buf, []byte(a.Name))
	writeBlob(&buf, a.Metadata)
	writeUint32(&buf, uint32(len(a.Modules)))
	for _, m := range a.Modules {
		writeBlob(&buf, m)
	}
	return buf.Bytes()
}

// Decode parses canonical artifact bytes.
//
// Fail-closed: trailing bytes, unknown versions, and truncated fields are
// all rejected with ErrMalformed.
func Decode(b []byte) (Artifact, error) {
	r := bytes.NewReader(b)
	head := make([]byte, len(magic))
	if _, err := r.Read(head); err != nil || !bytes.Equal(head, magic) {
		return Artifact{}, fmt.Errorf("%w: missing magic", ErrMalformed)
	}
	version, err := readUint32(r)
	if err != nil {
		return Artifact{}, err
	}
	if version != FormatVersion {
		return Artifact{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, version)
	}
	name, err := readBlob(r)
	if err != nil {
		return Artifact{}, err
	}
	metadata, err := readBlob(r)
	if err != nil {
		return Artifact{}, err
	}
	count, err := readUint32(r)
	if err != nil {
		return Artifact{}, err
	}
	if uint64(count) > uint64(r.Len()) {
		return Artifact{}, fmt.Errorf("%w: module count %d exceeds input", ErrMalformed, count)
	}
	modules := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		m, err := readBlob(r)
		if err != nil {
			return Artifact{}, err
		}
		modules = append(modules, m)
	}
	if r.Len() != 0 {
		return Artifact{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.Len())
	}
	return Artifact{Name: string(name), Metadata: metadata, Modules: modules}, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeBlob(buf *bytes.Buffer, b []byte) {
	writeUint32(buf, uint32(len(b)))
	buf.Write(b)
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := r.Read(tmp[:]); err != nil {
		return 0, fmt.Errorf("%w: truncated", ErrMalformed)
	}
	return binary.BigEndian.Uint32(tmp[:]), nil
}

func readBlob(r *bytes.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n > maxBlobLen || uint64(n) > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: blob length %d exceeds input", ErrMalformed, n)
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	if _, err := r.Read(out); err != nil {
		return nil, fmt.Errorf("%w: truncated blob", ErrMalformed)
	}
	return out, nil
}
