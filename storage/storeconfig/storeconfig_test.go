package storeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"xdao.co/raforge/storage/storereg"

	_ "xdao.co/raforge/storage/localfs"
	_ "xdao.co/raforge/storage/memstore"
)

func TestConfig_Validate(t *testing.T) {
	cases := map[string]Config{
		"no backends": {},
		"empty name":  {Backends: []BackendConfig{{Name: ""}}},
		"dup id":      {Backends: []BackendConfig{{Name: "memory"}, {Name: "memory"}}},
		"bad policy":  {WritePolicy: "quorum", Backends: []BackendConfig{{Name: "memory"}}},
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	ok := Config{WritePolicy: "all", Backends: []BackendConfig{
		{Name: "memory", ID: "a"},
		{Name: "memory", ID: "b"},
	}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestConfig_OpenReplicated(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		WritePolicy: "all",
		Backends: []BackendConfig{
			{Name: "memory", ID: "mem"},
			{Name: "localfs", ID: "disk", Config: map[string]string{"dir": filepath.Join(dir, "artifacts")}},
		},
	}

	st, closeFn, err := cfg.Open(storereg.UsageCLI, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = closeFn() }()

	id, err := st.Put([]byte("replicated artifact"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !st.Has(id) {
		t.Fatalf("Has: expected true")
	}
}

func TestConfig_PreferredBackendReorders(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{
		{Name: "memory", ID: "a"},
		{Name: "memory", ID: "b"},
	}}

	if _, _, err := cfg.Open(storereg.UsageCLI, "missing"); err == nil {
		t.Fatalf("expected error for unknown preferred backend")
	}
	st, closeFn, err := cfg.Open(storereg.UsageCLI, "b")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = closeFn() }()
	if st == nil {
		t.Fatalf("expected store")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	body := `{"write_policy":"first","backends":[{"name":"memory"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.WritePolicy != "first" || len(cfg.Backends) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := LoadFile(""); err == nil {
		t.Fatalf("empty path should fail")
	}
}
