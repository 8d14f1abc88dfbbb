// Package plan resolves deployment plans into addresses and publish payloads.
//
// Resolution is pure: holder addresses derive from (publisher, seed), every
// package's address name binds to its deployment's holder address, and the
// global deploy order is the position of a package in the flattened
// deployments list. Artifact bytes come from a Source so the planner itself
// never touches a compiler.
package plan

import (
	"fmt"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"xdao.co/raforge/addr"
	"xdao.co/raforge/artifact"
	"xdao.co/raforge/payload"
	"xdao.co/raforge/planfile"
	"xdao.co/raforge/storage"
)

// Env is a resolved deployment plan.
type Env struct {
	plan    planfile.Plan
	named   map[string]addr.Address
	holders map[string]addr.Address
}

// NewEnv resolves p. Plan-level named addresses are kept; each package's
// address name binds to the derived holder address of its deployment.
func NewEnv(p planfile.Plan) (*Env, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	named := make(map[string]addr.Address, len(p.NamedAddresses))
	for name, a := range p.NamedAddresses {
		named[name] = a
	}
	holders := make(map[string]addr.Address)

	for _, d := range p.Deployments {
		publisher := p.Publishers[d.Publisher]
		holder := addr.Derive(publisher, []byte(d.Seed))
		for _, pkg := range d.Packages {
			holders[pkg.AddressName] = holder
			named[pkg.AddressName] = holder
		}
	}

	return &Env{plan: p, named: named, holders: holders}, nil
}

// Plan returns the underlying plan.
func (e *Env) Plan() planfile.Plan { return e.plan }

// NamedAddresses returns the merged name to address binding: plan-level
// named addresses plus one binding per package address name.
func (e *Env) NamedAddresses() map[string]addr.Address {
	out := make(map[string]addr.Address, len(e.named))
	for k, v := range e.named {
		out[k] = v
	}
	return out
}

// HolderAddress reports the derived holder address for a package address
// name.
func (e *Env) HolderAddress(addressName string) (addr.Address, bool) {
	a, ok := e.holders[addressName]
	return a, ok
}

// DeployOrder reports the global publish index of the package at path, or
// false if the path is not part of the plan. Paths are compared cleaned.
func (e *Env) DeployOrder(path string) (int, bool) {
	want := filepath.Clean(path)
	i := 0
	for _, d := range e.plan.Deployments {
		for _, pkg := range d.Packages {
			if filepath.Clean(pkg.Path) == want {
				return i, true
			}
			i++
		}
	}
	return 0, false
}

// Source resolves a plan package path to its built artifact.
type Source interface {
	Artifact(path string) (artifact.Artifact, error)
}

// StoreSource resolves packages from an artifact store via a path to CID
// manifest.
type StoreSource struct {
	Store storage.Store
	CIDs  map[string]cid.Cid
}

func (s StoreSource) Artifact(path string) (artifact.Artifact, error) {
	id, ok := s.CIDs[filepath.Clean(path)]
	if !ok {
		return artifact.Artifact{}, fmt.Errorf("plan: no artifact CID for package %q", path)
	}
	b, err := s.Store.Get(id)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return artifact.Decode(b)
}

// Built is one package resolved to its publish payload.
type Built struct {
	Order       int
	Publisher   addr.Address
	Seed        string
	Holder      addr.Address
	PackageName string
	Payload     payload.EntryFunction
}

// BuildPayloads resolves every package in plan order into a publish payload.
func (e *Env) BuildPayloads(src Source) ([]Built, error) {
	if src == nil {
		return nil, fmt.Errorf("plan: nil artifact source")
	}

	out := make([]Built, 0, e.plan.PackageCount())
	order := 0
	for _, d := range e.plan.Deployments {
		publisher := e.plan.Publishers[d.Publisher]
		holder := addr.Derive(publisher, []byte(d.Seed))
		for _, pkg := range d.Packages {
			a, err := src.Artifact(pkg.Path)
			if err != nil {
				return nil, fmt.Errorf("plan: package %q: %w", pkg.AddressName, err)
			}
			name := a.Name
			if name == "" {
				name = pkg.AddressName
			}
			out = append(out, Built{
				Order:       order,
				Publisher:   publisher,
				Seed:        d.Seed,
				Holder:      holder,
				PackageName: name,
				Payload:     payload.NewDeploy(e.plan.DeploymentAddress, d.Seed, a.Metadata, a.Modules),
			})
			order++
		}
	}
	return out, nil
}

// WritePayloads renders every publish payload into dir, one file per
// package, named with the deploy-order prefix. It reports the number of
// files written.
func (e *Env) WritePayloads(src Source, dir string) (int, error) {
	built, err := e.BuildPayloads(src)
	if err != nil {
		return 0, err
	}
	for _, b := range built {
		if _, err := b.Payload.WriteFile(dir, b.Order, b.PackageName); err != nil {
			return 0, err
		}
	}
	return len(built), nil
}
