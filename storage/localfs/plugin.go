package localfs

import (
	"fmt"

	"github.com/spf13/pflag"

	"xdao.co/revstore/storage"
	"xdao.co/revstore/storage/registry"
)

var flagDir string

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "localfs",
		Description: "Local filesystem element store (directory)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagDir, "localfs-dir", "", "LocalFS store directory (for --backend=localfs)")
		},
		Open: func() (storage.Store, func() error, error) {
			if flagDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			s, err := New(flagDir)
			return s, nil, err
		},
		OpenConfig: func(cfg map[string]string) (storage.Store, func() error, error) {
			dir := cfg["localfs-dir"]
			if dir == "" {
				return nil, nil, fmt.Errorf("localfs: missing localfs-dir")
			}
			s, err := New(dir)
			return s, nil, err
		},
	})
}
