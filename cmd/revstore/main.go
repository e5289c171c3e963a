package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"xdao.co/revstore/builder"
	"xdao.co/revstore/chunk"
	"xdao.co/revstore/codec"
	"xdao.co/revstore/compliance"
	"xdao.co/revstore/editors"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/model"
	"xdao.co/revstore/resolver"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newLogger(errOut io.Writer) hclog.Logger {
	level := hclog.LevelFromString(os.Getenv("REVSTORE_LOG"))
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "revstore",
		Level:  level,
		Output: errOut,
	})
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}
	log := newLogger(errOut)

	switch args[0] {
	case "encode":
		return cmdEncode(args[1:], out, errOut, log)
	case "decode":
		return cmdDecode(args[1:], out, errOut, log)
	case "inspect":
		return cmdInspect(args[1:], out, errOut)
	case "editors":
		return cmdEditors(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut, log)
	case "store":
		return cmdStore(args[1:], out, errOut, log)
	case "backends":
		return cmdBackends(out)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "revstore: revision-store package encoder/decoder")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  revstore encode --out <pkg> [--chunk-size N] [--group-limit N] [--blob-threshold N] [--editors <xml>] <file>")
	fmt.Fprintln(w, "  revstore decode --index <exguid> [--out <file>] [--mode permissive|strict] [--cell <cellid>] <pkg>")
	fmt.Fprintln(w, "  revstore inspect --index <exguid> [--mode permissive|strict] <pkg>")
	fmt.Fprintln(w, "  revstore editors <pkg>")
	fmt.Fprintln(w, "  revstore bundle export --index <exguid> --out <tar> <pkg>")
	fmt.Fprintln(w, "  revstore bundle import [--out <pkg>] [--ignore-unknown] <tar>")
	fmt.Fprintln(w, "  revstore store put (--backend <name> [backend flags] | --config <file>) <pkg>")
	fmt.Fprintln(w, "  revstore store get --index <exguid> --out <pkg> (--backend <name> [backend flags] | --config <file>)")
	fmt.Fprintln(w, "  revstore backends")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - encode prints the storage index ExGuid; every other command takes it via --index")
	fmt.Fprintln(w, "  - editors prints the embedded editors table as JSON ([] when absent)")
	fmt.Fprintln(w, "  - REVSTORE_LOG sets the log level (trace, debug, info, warn, error)")
}

func newFlagSet(name string, errOut io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(errOut)
	return fs
}

func parseMode(s string, errOut io.Writer) (compliance.ComplianceMode, bool) {
	mode, err := compliance.Parse(s)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --mode: %v\n", err)
		return 0, false
	}
	return mode, true
}

func readPackage(path string, mode compliance.ComplianceMode, errOut io.Writer) (*element.Package, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read package: %v\n", err)
		return nil, false
	}
	pkg, err := codec.DecodePackage(b, mode)
	if err != nil {
		fmt.Fprintf(errOut, "invalid package: %v\n", err)
		return nil, false
	}
	return pkg, true
}

func writePackage(path string, pkg *element.Package, errOut io.Writer) bool {
	b, err := codec.EncodePackage(pkg)
	if err != nil {
		fmt.Fprintf(errOut, "encode package: %v\n", err)
		return false
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		fmt.Fprintf(errOut, "write package: %v\n", err)
		return false
	}
	return true
}

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = out.Write(append(b, '\n'))
	return err
}

// printErr reports err with its stable code when it has one.
func printErr(errOut io.Writer, prefix string, err error) {
	var ce *model.CodedError
	if errors.As(model.MapError(err), &ce) {
		fmt.Fprintf(errOut, "%s: %s: %v\n", prefix, ce.Code, err)
		return
	}
	fmt.Fprintf(errOut, "%s: %v\n", prefix, err)
}

func cmdEncode(args []string, out io.Writer, errOut io.Writer, log hclog.Logger) int {
	fs := newFlagSet("encode", errOut)
	var (
		outPath       string
		editorsPath   string
		chunkSize     int
		groupLimit    int
		blobThreshold int
	)
	fs.StringVar(&outPath, "out", "", "Output package file")
	fs.StringVar(&editorsPath, "editors", "", "Editors table XML to embed")
	fs.IntVar(&chunkSize, "chunk-size", chunk.DefaultSize, "Leaf size in bytes")
	fs.IntVar(&groupLimit, "group-limit", 0, "Max objects per object group (0 = unlimited)")
	fs.IntVar(&blobThreshold, "blob-threshold", 0, "Leaves above this size become data blobs (0 = never)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || outPath == "" {
		fmt.Fprintln(errOut, "usage: revstore encode --out <pkg> [flags] <file>")
		return 2
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read input: %v\n", err)
		return 1
	}

	b := &builder.Builder{
		Chunker:       chunk.FixedSize{Size: chunkSize},
		GroupLimit:    groupLimit,
		BlobThreshold: blobThreshold,
		Logger:        log.Named("builder"),
	}
	if editorsPath != "" {
		text, err := os.ReadFile(editorsPath)
		if err != nil {
			fmt.Fprintf(errOut, "read --editors: %v\n", err)
			return 1
		}
		eds, err := editors.Parse(text)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --editors: %v\n", err)
			return 1
		}
		b.Editors = eds
	}

	res, err := b.Encode(data)
	if err != nil {
		printErr(errOut, "encode", err)
		return 1
	}
	if !writePackage(outPath, res.Package, errOut) {
		return 1
	}
	_, _ = fmt.Fprintln(out, res.StorageIndexID)
	return 0
}

func cmdDecode(args []string, out io.Writer, errOut io.Writer, log hclog.Logger) int {
	fs := newFlagSet("decode", errOut)
	var index, outPath, modeStr, cellStr string
	fs.StringVar(&index, "index", "", "Storage index ExGuid")
	fs.StringVar(&outPath, "out", "", "Output file (default stdout)")
	fs.StringVar(&modeStr, "mode", "permissive", "Compliance mode: permissive|strict")
	fs.StringVar(&cellStr, "cell", "", "Cell id to materialize (default main cell)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || index == "" {
		fmt.Fprintln(errOut, "usage: revstore decode --index <exguid> [flags] <pkg>")
		return 2
	}
	mode, ok := parseMode(modeStr, errOut)
	if !ok {
		return 2
	}
	id, err := ident.ParseExGuid(index)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --index: %v\n", err)
		return 2
	}
	opts := resolver.Options{Mode: mode, Logger: log.Named("resolver")}
	if cellStr != "" {
		if opts.Cell, err = ident.ParseCellId(cellStr); err != nil {
			fmt.Fprintf(errOut, "invalid --cell: %v\n", err)
			return 2
		}
	}

	pkg, ok := readPackage(fs.Arg(0), mode, errOut)
	if !ok {
		return 1
	}
	data, err := resolver.Content(pkg, id, opts)
	if err != nil {
		printErr(errOut, "decode", err)
		return 1
	}
	if outPath == "" {
		_, _ = out.Write(data)
		return 0
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(errOut, "write output: %v\n", err)
		return 1
	}
	return 0
}

func cmdInspect(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("inspect", errOut)
	var index, modeStr string
	fs.StringVar(&index, "index", "", "Storage index ExGuid")
	fs.StringVar(&modeStr, "mode", "permissive", "Compliance mode: permissive|strict")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || index == "" {
		fmt.Fprintln(errOut, "usage: revstore inspect --index <exguid> [--mode permissive|strict] <pkg>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read package: %v\n", err)
		return 1
	}
	rep, err := model.InspectBytes(model.InspectRequest{
		Package:      b,
		StorageIndex: index,
		Compliance:   model.ComplianceMode(strings.ToLower(modeStr)),
	})
	if err != nil {
		printErr(errOut, "inspect", err)
		return 1
	}
	if err := writeJSON(out, rep); err != nil {
		fmt.Fprintf(errOut, "write report: %v\n", err)
		return 1
	}
	return 0
}

func cmdEditors(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("editors", errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: revstore editors <pkg>")
		return 2
	}
	pkg, ok := readPackage(fs.Arg(0), compliance.Permissive, errOut)
	if !ok {
		return 1
	}
	eds, err := editors.Extract(pkg)
	if err != nil && !editors.IsNotFound(err) {
		printErr(errOut, "editors", err)
		return 1
	}
	if err := writeJSON(out, model.FromEditors(eds)); err != nil {
		fmt.Fprintf(errOut, "write editors: %v\n", err)
		return 1
	}
	return 0
}
