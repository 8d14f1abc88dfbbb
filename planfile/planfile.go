// Package planfile loads and validates TOML deployment plans.
//
// A plan names the publishers, the address hosting the deploy entry function,
// extra named addresses, and an ordered list of deployments. Each deployment
// binds one publisher and one seed to an ordered list of packages; all
// packages of a deployment land on the same derived holder address.
package planfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"xdao.co/raforge/addr"
)

// FormatVersion is the current plan schema version.
const FormatVersion = 1

type Plan struct {
	FormatVersion     int                     `toml:"format_version"`
	DeploymentAddress addr.Address            `toml:"deployment_address"`
	Publishers        map[string]addr.Address `toml:"publishers"`
	NamedAddresses    map[string]addr.Address `toml:"named-addresses"`
	Deployments       []Deployment            `toml:"deployments"`
}

type Deployment struct {
	Publisher string        `toml:"publisher"`
	Seed      string        `toml:"seed"`
	Packages  []PackageSpec `toml:"packages"`
}

type PackageSpec struct {
	AddressName string `toml:"address_name"`
	Path        string `toml:"path"`
}

// Load reads and validates a plan from path.
func Load(path string) (Plan, error) {
	var p Plan
	if path == "" {
		return p, errors.New("planfile: empty plan path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	return Parse(b)
}

// Parse decodes and validates a plan from TOML bytes.
func Parse(b []byte) (Plan, error) {
	var p Plan
	md, err := toml.Decode(string(b), &p)
	if err != nil {
		return p, fmt.Errorf("planfile: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return p, fmt.Errorf("planfile: unknown key %q", undec[0].String())
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Plan) Validate() error {
	if p.FormatVersion != FormatVersion {
		return fmt.Errorf("planfile: unsupported format_version %d", p.FormatVersion)
	}
	if p.DeploymentAddress.IsZero() {
		return errors.New("planfile: deployment_address is required")
	}

	seenNames := make(map[string]struct{})
	for name := range p.NamedAddresses {
		seenNames[name] = struct{}{}
	}

	for i, d := range p.Deployments {
		if d.Publisher == "" {
			return fmt.Errorf("planfile: deployment %d: publisher is required", i)
		}
		if _, ok := p.Publishers[d.Publisher]; !ok {
			return fmt.Errorf("planfile: deployment %d: unknown publisher %q", i, d.Publisher)
		}
		if d.Seed == "" {
			return fmt.Errorf("planfile: deployment %d: seed is required", i)
		}
		for j, pkg := range d.Packages {
			if pkg.AddressName == "" {
				return fmt.Errorf("planfile: deployment %d package %d: address_name is required", i, j)
			}
			if pkg.Path == "" {
				return fmt.Errorf("planfile: deployment %d package %d: path is required", i, j)
			}
			if _, ok := seenNames[pkg.AddressName]; ok {
				return fmt.Errorf("planfile: duplicate address name %q", pkg.AddressName)
			}
			seenNames[pkg.AddressName] = struct{}{}
		}
	}
	return nil
}

// PackageCount reports the total number of packages across all deployments.
func (p Plan) PackageCount() int {
	n := 0
	for _, d := range p.Deployments {
		n += len(d.Packages)
	}
	return n
}
