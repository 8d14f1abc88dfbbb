package memstore

import (
	"flag"

	"xdao.co/raforge/storage"
	"xdao.co/raforge/storage/storereg"
)

func init() {
	storereg.MustRegister(storereg.Backend{
		Name:          "memory",
		Description:   "In-memory artifact store (non-durable)",
		Usage:         storereg.UsageCLI | storereg.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (storage.Store, func() error, error) {
			return New(), nil, nil
		},
		OpenWithConfig: func(cfg map[string]string) (storage.Store, func() error, error) {
			return New(), nil, nil
		},
	})
}
