package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xdao.co/raforge/addr"
)

// EventDefinition describes one event struct of a published package: where
// it lives and its field layout.
type EventDefinition struct {
	PackageName   string            `json:"package_name"`
	ModuleAddress addr.Address      `json:"module_address"`
	ModuleName    string            `json:"module_name"`
	Name          string            `json:"name"`
	Fields        map[string]string `json:"fields"`
}

// SymbolicName is the package-relative event name used in mapping files.
func (d EventDefinition) SymbolicName() string {
	return fmt.Sprintf("%s::%s::%s", d.PackageName, d.ModuleName, d.Name)
}

// MaterializedName is the on-ledger event name keyed by module address.
func (d EventDefinition) MaterializedName() string {
	return fmt.Sprintf("%s::%s::%s", d.ModuleAddress, d.ModuleName, d.Name)
}

// FieldNames returns the field names in sorted order.
func (d EventDefinition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadEventDefinitionsFromDir reads every .json file in dir; each file holds
// a JSON array of event definitions.
func LoadEventDefinitionsFromDir(dir string) ([]EventDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("indexer: read dir %s: %w", dir, err)
	}

	var out []EventDefinition
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("indexer: read %s: %w", path, err)
		}
		var defs []EventDefinition
		if err := json.Unmarshal(b, &defs); err != nil {
			return nil, fmt.Errorf("indexer: parse %s: %w", path, err)
		}
		out = append(out, defs...)
	}
	return out, nil
}
