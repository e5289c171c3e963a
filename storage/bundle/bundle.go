// Package bundle packs a revision-store package into a deterministic TAR
// archive for offline transfer, and reads it back.
//
// Layout:
//
//	blocks/<guid>.<serial>  encoded element bytes (codec form)
//	index.json              optional; storage index id plus per-block kind and digest
package bundle

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"xdao.co/revstore/cidutil"
	"xdao.co/revstore/codec"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/storage"
)

// FormatVersion is the current bundle index schema version.
const FormatVersion = 1

var epoch0 = time.Unix(0, 0).UTC()

// ExportOptions controls bundle export behavior.
type ExportOptions struct {
	// StorageIndexID is recorded in index.json so readers know where to start resolving.
	StorageIndexID ident.ExGuid
	// IncludeIndex controls whether index.json is included.
	IncludeIndex bool
}

// Export writes a deterministic TAR bundle containing every element of pkg.
//
// Entry order follows the ExGuid ordering and TAR headers are normalized,
// so equal packages produce equal bytes.
func Export(w io.Writer, pkg *element.Package, opts ExportOptions) error {
	if pkg == nil {
		return fmt.Errorf("bundle: nil package")
	}
	elems := pkg.Elements()
	sort.Slice(elems, func(i, j int) bool { return elems[i].ID.Less(elems[j].ID) })

	tw := tar.NewWriter(w)

	blocks := make([]indexBlock, 0, len(elems))
	for _, e := range elems {
		b, err := codec.EncodeElement(e)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeFile(tw, "blocks/"+blockName(e.ID), b); err != nil {
			_ = tw.Close()
			return err
		}
		blocks = append(blocks, indexBlock{
			ID:     e.ID.String(),
			Kind:   e.Kind().String(),
			Size:   len(b),
			Digest: cidutil.DigestString(b),
		})
	}

	if opts.IncludeIndex {
		idx := indexJSON{
			Version: FormatVersion,
			Blocks:  blocks,
		}
		if !opts.StorageIndexID.IsNull() {
			idx.StorageIndex = opts.StorageIndexID.String()
		}
		b, err := marshalCanonicalIndexJSON(idx)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeFile(tw, "index.json", b); err != nil {
			_ = tw.Close()
			return err
		}
	}

	return tw.Close()
}

// ExportStore fetches ids from s and writes them as a bundle.
func ExportStore(w io.Writer, s storage.Store, ids []ident.ExGuid, opts ExportOptions) error {
	if s == nil {
		return fmt.Errorf("bundle: nil store")
	}
	elems := make([]element.DataElement, 0, len(ids))
	for _, id := range ids {
		e, err := s.Get(id)
		if err != nil {
			return fmt.Errorf("bundle: %s: %w", id, err)
		}
		elems = append(elems, e)
	}
	pkg, err := element.NewPackage(elems...)
	if err != nil {
		return err
	}
	return Export(w, pkg, opts)
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// IgnoreUnknown controls whether unknown TAR entries are ignored.
	//
	// Default (false) is fail-closed: unknown entries cause an error.
	IgnoreUnknown bool
}

// Bundle is the decoded content of a bundle archive.
type Bundle struct {
	// StorageIndexID is null when the bundle carried no index.json.
	StorageIndexID ident.ExGuid
	Package        *element.Package
}

// Read decodes a bundle from r.
//
// Each block's decoded id must match its entry name. When index.json is
// present, every listed block must be present with a matching digest.
func Read(r io.Reader, opts ImportOptions) (*Bundle, error) {
	tr := tar.NewReader(r)
	var (
		elems  []element.DataElement
		raw    = map[ident.ExGuid][]byte{}
		idx    *indexJSON
		result Bundle
	)

	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return nil, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return nil, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		if name == "index.json" {
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, err
			}
			var v indexJSON
			if err := json.Unmarshal(b, &v); err != nil {
				return nil, fmt.Errorf("bundle: index.json: %w", err)
			}
			if v.Version != FormatVersion {
				return nil, fmt.Errorf("bundle: unsupported index version %d", v.Version)
			}
			idx = &v
			continue
		}

		if !strings.HasPrefix(name, "blocks/") {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return nil, fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, err := parseBlockName(strings.TrimPrefix(name, "blocks/"))
		if err != nil {
			return nil, storage.ErrInvalidID
		}
		if _, ok := raw[id]; ok {
			return nil, fmt.Errorf("bundle: duplicate block entry: %s", id)
		}
		payload, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		e, err := codec.DecodeElement(payload)
		if err != nil {
			return nil, err
		}
		if e.ID != id {
			return nil, storage.ErrIDMismatch
		}
		raw[id] = payload
		elems = append(elems, e)
	}

	if idx != nil {
		if idx.StorageIndex != "" {
			id, err := ident.ParseExGuid(idx.StorageIndex)
			if err != nil {
				return nil, fmt.Errorf("bundle: index.json: %w", err)
			}
			result.StorageIndexID = id
		}
		for _, blk := range idx.Blocks {
			id, err := ident.ParseExGuid(blk.ID)
			if err != nil {
				return nil, fmt.Errorf("bundle: index.json: %w", err)
			}
			b, ok := raw[id]
			if !ok {
				return nil, fmt.Errorf("bundle: index lists missing block %s", id)
			}
			if err := cidutil.Verify(b, blk.Digest); err != nil {
				return nil, fmt.Errorf("bundle: block %s: %w", id, err)
			}
		}
	}

	pkg, err := element.NewPackage(elems...)
	if err != nil {
		return nil, err
	}
	result.Package = pkg
	return &result, nil
}

// Import reads a bundle from r and writes all elements into s.
//
// Default behavior is fail-closed: unknown entries cause an error.
func Import(r io.Reader, s storage.Store) (*Bundle, error) {
	return ImportWithOptions(r, s, ImportOptions{})
}

func ImportWithOptions(r io.Reader, s storage.Store, opts ImportOptions) (*Bundle, error) {
	if s == nil {
		return nil, fmt.Errorf("bundle: nil store")
	}
	b, err := Read(r, opts)
	if err != nil {
		return nil, err
	}
	if err := storage.PutPackage(s, b.Package); err != nil {
		return nil, err
	}
	return b, nil
}

type indexJSON struct {
	Version      int          `json:"version"`
	StorageIndex string       `json:"storageIndex,omitempty"`
	Blocks       []indexBlock `json:"blocks"`
}

type indexBlock struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Size   int    `json:"size"`
	Digest string `json:"digest"`
}

func marshalCanonicalIndexJSON(idx indexJSON) ([]byte, error) {
	// indexJSON is composed only of structs + slices, so output order is fixed.
	b, err := json.Marshal(idx)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func blockName(id ident.ExGuid) string {
	return id.ID.String() + "." + strconv.FormatUint(uint64(id.Serial), 10)
}

func parseBlockName(name string) (ident.ExGuid, error) {
	g, s, ok := strings.Cut(name, ".")
	if !ok {
		return ident.NullExGuid, fmt.Errorf("bundle: invalid block name %q", name)
	}
	guid, err := ident.ParseGuid(g)
	if err != nil {
		return ident.NullExGuid, err
	}
	serial, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return ident.NullExGuid, err
	}
	id := ident.NewExGuid(uint32(serial), guid)
	if id.IsNull() {
		return ident.NullExGuid, storage.ErrInvalidID
	}
	return id, nil
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}

	parts := strings.Split(name, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return strings.Join(parts, "/")
}
