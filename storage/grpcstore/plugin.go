package grpcstore

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"xdao.co/revstore/storage"
	"xdao.co/revstore/storage/registry"
)

var (
	flagAddr    string
	flagTimeout time.Duration
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "grpc",
		Description: "Remote element store over gRPC (revstored)",
		Usage:       registry.UsageCLI,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagAddr, "grpc-addr", "", "revstored address (for --backend=grpc)")
			fs.DurationVar(&flagTimeout, "grpc-timeout", 10*time.Second, "Per-RPC timeout (for --backend=grpc)")
		},
		Open: func() (storage.Store, func() error, error) {
			return open(flagAddr, flagTimeout)
		},
		OpenConfig: func(cfg map[string]string) (storage.Store, func() error, error) {
			timeout := 10 * time.Second
			if v := cfg["grpc-timeout"]; v != "" {
				d, err := time.ParseDuration(v)
				if err != nil {
					return nil, nil, fmt.Errorf("grpcstore: grpc-timeout: %w", err)
				}
				timeout = d
			}
			return open(cfg["grpc-addr"], timeout)
		},
	})
}

func open(addr string, timeout time.Duration) (storage.Store, func() error, error) {
	if addr == "" {
		return nil, nil, fmt.Errorf("missing --grpc-addr")
	}
	c, err := Dial(addr, DialOptions{Timeout: timeout})
	if err != nil {
		return nil, nil, err
	}
	c.Timeout = timeout
	return c, c.Close, nil
}
