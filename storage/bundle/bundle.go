// Package bundle exports and imports deployment release bundles.
//
// A release bundle is a deterministic TAR archive carrying the artifact
// blobs for one deployment plan, plus an optional manifest mapping package
// names to artifact CIDs. Identical inputs always produce identical bundle
// bytes.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/raforge/artifact"
	"xdao.co/raforge/storage"
)

// FormatVersion is the current manifest schema version.
const FormatVersion = 1

var epoch0 = time.Unix(0, 0).UTC()

// ExportOptions controls bundle export behavior.
type ExportOptions struct {
	// Packages is optional, non-authoritative metadata mapping package names
	// to artifact CIDs.
	Packages map[string]cid.Cid
	// IncludeManifest controls whether manifest.json is included.
	IncludeManifest bool
}

// Export writes a deterministic TAR bundle containing the artifacts for the
// given CIDs.
//
// Entry order is lexicographic and TAR headers are normalized, so the bundle
// bytes are a pure function of the inputs. Every exported blob is validated
// against its CID before it is written.
func Export(w io.Writer, st storage.Store, ids []cid.Cid, opts ExportOptions) error {
	if st == nil {
		return fmt.Errorf("bundle: nil store")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}

	cidStrings := make([]string, 0, len(uniq))
	for s := range uniq {
		cidStrings = append(cidStrings, s)
	}
	sort.Strings(cidStrings)

	tw := tar.NewWriter(w)

	entries := make([]manifestArtifact, 0, len(cidStrings))
	for _, s := range cidStrings {
		id := uniq[s]
		b, err := st.Get(id)
		if err != nil {
			_ = tw.Close()
			return err
		}
		got, err := artifact.CID(b)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if got.String() != id.String() {
			_ = tw.Close()
			return storage.ErrCIDMismatch
		}

		if err := writeEntry(tw, "artifacts/"+id.String(), b); err != nil {
			_ = tw.Close()
			return err
		}
		entries = append(entries, manifestArtifact{CID: id.String(), Size: len(b)})
	}

	if opts.IncludeManifest {
		m := manifestJSON{
			Version:   FormatVersion,
			CIDCodec:  "raw",
			Multihash: "sha2-256",
			Artifacts: entries,
		}

		if len(opts.Packages) > 0 {
			names := make([]string, 0, len(opts.Packages))
			for n := range opts.Packages {
				names = append(names, n)
			}
			sort.Strings(names)

			pkgs := make([]manifestPackage, 0, len(names))
			for _, n := range names {
				if n == "" {
					_ = tw.Close()
					return fmt.Errorf("bundle: empty package name")
				}
				v := opts.Packages[n]
				if !v.Defined() {
					_ = tw.Close()
					return storage.ErrInvalidCID
				}
				pkgs = append(pkgs, manifestPackage{Name: n, CID: v.String()})
			}
			m.Packages = pkgs
		}

		b, err := json.Marshal(m)
		if err != nil {
			_ = tw.Close()
			return err
		}
		b = append(b, '\n')
		if err := writeEntry(tw, "manifest.json", b); err != nil {
			_ = tw.Close()
			return err
		}
	}

	return tw.Close()
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// IgnoreUnknown controls whether unknown TAR entries are ignored.
	//
	// Default (false) is fail-closed: unknown entries cause Import to return
	// an error.
	IgnoreUnknown bool
}

// Import reads a bundle from r and imports every artifact into st.
func Import(r io.Reader, st storage.Store) error {
	return ImportWithOptions(r, st, ImportOptions{})
}

// ImportWithOptions reads a bundle from r and imports every artifact into st.
//
// Each blob must match both the CID encoded in its entry name and the CID
// recomputed from its bytes.
func ImportWithOptions(r io.Reader, st storage.Store, opts ImportOptions) error {
	if st == nil {
		return fmt.Errorf("bundle: nil store")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		// Non-authoritative metadata.
		if name == "manifest.json" {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}

		if !strings.HasPrefix(name, "artifacts/") {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return fmt.Errorf("bundle: unknown entry: %s", name)
		}

		cidStr := strings.TrimPrefix(name, "artifacts/")
		id, derr := cid.Decode(cidStr)
		if derr != nil || !id.Defined() {
			return storage.ErrInvalidCID
		}

		payload, rerr := io.ReadAll(tr)
		if rerr != nil {
			return rerr
		}
		got, herr := artifact.CID(payload)
		if herr != nil {
			return herr
		}
		if got.String() != id.String() {
			return storage.ErrCIDMismatch
		}

		key := id.String()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("bundle: duplicate artifact entry: %s", key)
		}
		seen[key] = struct{}{}

		putID, perr := st.Put(payload)
		if perr != nil {
			return perr
		}
		if putID.String() != id.String() {
			return storage.ErrCIDMismatch
		}
	}
}

// ReadManifest extracts and decodes manifest.json from a bundle, if present.
func ReadManifest(r io.Reader) (*Manifest, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if cleanTarPath(h.Name) != "manifest.json" || h.Typeflag != tar.TypeReg {
			continue
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		var m manifestJSON
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("bundle: bad manifest: %w", err)
		}
		if m.Version != FormatVersion {
			return nil, fmt.Errorf("bundle: unsupported manifest version %d", m.Version)
		}
		out := &Manifest{Packages: make(map[string]cid.Cid, len(m.Packages))}
		for _, a := range m.Artifacts {
			id, err := cid.Decode(a.CID)
			if err != nil {
				return nil, storage.ErrInvalidCID
			}
			out.Artifacts = append(out.Artifacts, id)
		}
		for _, p := range m.Packages {
			id, err := cid.Decode(p.CID)
			if err != nil {
				return nil, storage.ErrInvalidCID
			}
			out.Packages[p.Name] = id
		}
		return out, nil
	}
}

// Manifest is the decoded form of a bundle manifest.
type Manifest struct {
	Artifacts []cid.Cid
	Packages  map[string]cid.Cid
}

type manifestJSON struct {
	Version   int                `json:"version"`
	CIDCodec  string             `json:"cidCodec"`
	Multihash string             `json:"multihash"`
	Artifacts []manifestArtifact `json:"artifacts"`
	Packages  []manifestPackage  `json:"packages,omitempty"`
}

type manifestArtifact struct {
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

type manifestPackage struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

func writeEntry(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}

	parts := strings.Split(name, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
		out = append(out, part)
	}
	return strings.Join(out, "/")
}
