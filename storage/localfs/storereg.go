package localfs

import (
	"flag"
	"fmt"

	"xdao.co/raforge/storage"
	"xdao.co/raforge/storage/storereg"
)

var flagLocalDir string

func init() {
	storereg.MustRegister(storereg.Backend{
		Name:        "localfs",
		Description: "Local filesystem artifact store (directory)",
		Usage:       storereg.UsageCLI | storereg.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "artifact store directory (for --backend=localfs)")
		},
		Open: func() (storage.Store, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			st, err := New(flagLocalDir)
			return st, nil, err
		},
		OpenWithConfig: func(cfg map[string]string) (storage.Store, func() error, error) {
			dir := cfg["dir"]
			if dir == "" {
				return nil, nil, fmt.Errorf("localfs: config key %q is required", "dir")
			}
			st, err := New(dir)
			return st, nil, err
		},
	})
}
