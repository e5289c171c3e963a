package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"xdao.co/revstore/compliance"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/resolver"
	"xdao.co/revstore/storage"
	"xdao.co/revstore/storage/bundle"
	"xdao.co/revstore/storage/config"
	"xdao.co/revstore/storage/registry"

	_ "xdao.co/revstore/storage/grpcstore"
	_ "xdao.co/revstore/storage/localfs"
)

func cmdBackends(out io.Writer) int {
	for _, b := range registry.List(registry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(out, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
	}
	return 0
}

type storeFlags struct {
	backend    string
	configPath string
}

func (f *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "backend", "localfs", "Store backend name (see: revstore backends)")
	fs.StringVar(&f.configPath, "config", "", "Store config file (JSON or YAML); overrides --backend")
	registry.RegisterFlags(fs, registry.UsageCLI)
}

func (f *storeFlags) open() (storage.Store, func() error, error) {
	if f.configPath == "" {
		return registry.Open(f.backend, registry.UsageCLI)
	}
	cfg, err := config.LoadFile(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg.Open(registry.UsageCLI, "")
}

func cmdStore(args []string, out io.Writer, errOut io.Writer, log hclog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: revstore store <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, get")
		return 2
	}
	switch args[0] {
	case "put":
		fs := newFlagSet("store put", errOut)
		var sf storeFlags
		sf.register(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: revstore store put [store flags] <pkg>")
			return 2
		}
		pkg, ok := readPackage(fs.Arg(0), compliance.Permissive, errOut)
		if !ok {
			return 1
		}
		s, closeFn, err := sf.open()
		if err != nil {
			fmt.Fprintf(errOut, "open store: %v\n", err)
			return 2
		}
		if closeFn != nil {
			defer closeFn()
		}
		if err := storage.PutPackage(s, pkg); err != nil {
			printErr(errOut, "store put", err)
			return 1
		}
		log.Info("stored package", "elements", pkg.Len())
		_, _ = fmt.Fprintln(out, pkg.Len())
		return 0

	case "get":
		fs := newFlagSet("store get", errOut)
		var sf storeFlags
		var index, outPath string
		sf.register(fs)
		fs.StringVar(&index, "index", "", "Storage index ExGuid")
		fs.StringVar(&outPath, "out", "", "Output package file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 0 || index == "" || outPath == "" {
			fmt.Fprintln(errOut, "usage: revstore store get --index <exguid> --out <pkg> [store flags]")
			return 2
		}
		id, err := ident.ParseExGuid(index)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --index: %v\n", err)
			return 2
		}
		s, closeFn, err := sf.open()
		if err != nil {
			fmt.Fprintf(errOut, "open store: %v\n", err)
			return 2
		}
		if closeFn != nil {
			defer closeFn()
		}

		empty := element.MustPackage()
		pkg, missing, err := resolver.Hydrate(context.Background(), empty, id, s, resolver.Options{Logger: log.Named("hydrate")})
		if err != nil {
			printErr(errOut, "store get", err)
			return 1
		}
		if len(missing) > 0 {
			for _, m := range missing {
				fmt.Fprintf(errOut, "missing: %s\n", m)
			}
			return 1
		}
		if !writePackage(outPath, pkg, errOut) {
			return 1
		}
		_, _ = fmt.Fprintln(out, pkg.Len())
		return 0

	default:
		fmt.Fprintf(errOut, "unknown store subcommand: %s\n", args[0])
		return 2
	}
}

func cmdBundle(args []string, out io.Writer, errOut io.Writer, log hclog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: revstore bundle <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		fs := newFlagSet("bundle export", errOut)
		var index, outPath string
		fs.StringVar(&index, "index", "", "Storage index ExGuid recorded in index.json")
		fs.StringVar(&outPath, "out", "", "Output TAR file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 || index == "" || outPath == "" {
			fmt.Fprintln(errOut, "usage: revstore bundle export --index <exguid> --out <tar> <pkg>")
			return 2
		}
		id, err := ident.ParseExGuid(index)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --index: %v\n", err)
			return 2
		}
		pkg, ok := readPackage(fs.Arg(0), compliance.Permissive, errOut)
		if !ok {
			return 1
		}
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(errOut, "create output: %v\n", err)
			return 1
		}
		if err := bundle.Export(f, pkg, bundle.ExportOptions{StorageIndexID: id, IncludeIndex: true}); err != nil {
			_ = f.Close()
			fmt.Fprintf(errOut, "export: %v\n", err)
			return 1
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(errOut, "close output: %v\n", err)
			return 1
		}
		log.Debug("exported bundle", "elements", pkg.Len(), "path", outPath)
		return 0

	case "import":
		fs := newFlagSet("bundle import", errOut)
		var outPath string
		var ignoreUnknown bool
		fs.StringVar(&outPath, "out", "", "Write the imported package to this file")
		fs.BoolVar(&ignoreUnknown, "ignore-unknown", false, "Skip unknown TAR entries instead of failing")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: revstore bundle import [--out <pkg>] [--ignore-unknown] <tar>")
			return 2
		}
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "open bundle: %v\n", err)
			return 1
		}
		defer f.Close()
		b, err := bundle.Read(f, bundle.ImportOptions{IgnoreUnknown: ignoreUnknown})
		if err != nil {
			fmt.Fprintf(errOut, "import: %v\n", err)
			return 1
		}
		if outPath != "" && !writePackage(outPath, b.Package, errOut) {
			return 1
		}
		_, _ = fmt.Fprintln(out, b.StorageIndexID)
		return 0

	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", args[0])
		return 2
	}
}
