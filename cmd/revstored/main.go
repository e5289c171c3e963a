package main

import (
	"net"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"xdao.co/revstore/storage"
	"xdao.co/revstore/storage/config"
	"xdao.co/revstore/storage/grpcstore"
	"xdao.co/revstore/storage/registry"

	_ "xdao.co/revstore/storage/localfs"
)

func main() {
	fs := pflag.NewFlagSet("revstored", pflag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backend := fs.String("backend", "localfs", "Store backend name")
	configPath := fs.String("config", "", "Store config file (JSON or YAML); overrides --backend")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	logLevel := fs.String("log-level", os.Getenv("REVSTORE_LOG"), "Log level (trace, debug, info, warn, error)")

	registry.RegisterFlags(fs, registry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])

	level := hclog.LevelFromString(*logLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	log := hclog.New(&hclog.LoggerOptions{Name: "revstored", Level: level, Output: os.Stderr})

	if *listBackends {
		for _, b := range registry.List(registry.UsageDaemon) {
			if b.Description == "" {
				_, _ = os.Stdout.WriteString(b.Name + "\n")
				continue
			}
			_, _ = os.Stdout.WriteString(b.Name + "\t" + b.Description + "\n")
		}
		return
	}

	var (
		store   storage.Store
		closeFn func() error
		err     error
	)
	if *configPath != "" {
		cfg, cerr := config.LoadFile(*configPath)
		if cerr != nil {
			log.Error("load config", "path", *configPath, "error", cerr)
			os.Exit(2)
		}
		store, closeFn, err = cfg.Open(registry.UsageDaemon, "")
	} else {
		store, closeFn, err = registry.Open(*backend, registry.UsageDaemon)
	}
	if err != nil {
		log.Error("open store", "error", err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Error("listen", "addr", *listen, "error", err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterElementStoreServer(s, &grpcstore.Server{Store: store, Logger: log.Named("server")})

	log.Info("listening", "addr", lis.Addr().String(), "backend", *backend)
	if err := s.Serve(lis); err != nil {
		log.Error("serve", "error", err)
		os.Exit(1)
	}
}
