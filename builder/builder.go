// Package builder encodes raw bytes into a data element package: a content
// tree flattened into object groups, topped by a revision manifest, a cell
// manifest, a storage manifest and a storage index.
package builder

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"xdao.co/revstore/chunk"
	"xdao.co/revstore/editors"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Builder mints a fresh manifest chain per Encode call.
//
// The zero value is usable: it gets a private Minter, FixedSize chunking,
// a single object group and no out-of-line blobs. Share one Minter across
// builders to draw every serial from the same counter.
type Builder struct {
	Minter  *ident.Minter
	Chunker chunk.Chunker

	// GroupLimit caps the objects per object group. Zero means no cap.
	GroupLimit int
	// BlobThreshold moves leaves larger than this many bytes into
	// ObjectDataBlob elements. Zero disables out-of-line blobs.
	BlobThreshold int

	// Editors, when non-empty, adds an editors table object group.
	Editors []editors.Editor

	Logger hclog.Logger

	once sync.Once
}

// Result is an encoded package and the identifiers minted for it.
type Result struct {
	Package        *element.Package
	StorageIndexID ident.ExGuid

	StorageManifestID  ident.ExGuid
	CellManifestID     ident.ExGuid
	RevisionManifestID ident.ExGuid
	RevisionID         ident.ExGuid
	RootNodeID         ident.ExGuid
	ObjectGroupIDs     []ident.ExGuid
	BlobIDs            []ident.ExGuid

	// CellSerial stamps the main cell mapping; Revise derives a newer one from it.
	CellSerial ident.SerialNumber
}

// Encode builds a package holding data as the first revision of the main cell.
func (b *Builder) Encode(data []byte) (*Result, error) {
	return b.encode(data, nil)
}

// Revise builds a package holding data as a new revision whose base is
// prev's revision. It carries prev's revision manifest for provenance; the
// new revision still lists its complete set of object groups.
func (b *Builder) Revise(prev *Result, data []byte) (*Result, error) {
	return b.encode(data, prev)
}

func (b *Builder) encode(data []byte, prev *Result) (*Result, error) {
	m := b.minter()
	log := b.logger()

	root := b.chunker().Chunk(data, m)
	groups, blobs := b.flatten(m, chunk.Objects(root))

	if len(b.Editors) > 0 {
		objs, err := editors.Objects(m, b.Editors)
		if err != nil {
			return nil, err
		}
		groups = append(groups, element.DataElement{ID: m.ExGuid(), Payload: element.ObjectGroup{Objects: objs}})
	}

	res := &Result{RootNodeID: root.ID}
	for _, g := range groups {
		res.ObjectGroupIDs = append(res.ObjectGroupIDs, g.ID)
	}
	for _, bl := range blobs {
		res.BlobIDs = append(res.BlobIDs, bl.ID)
	}

	base := ident.NullExGuid
	if prev != nil {
		base = prev.RevisionID
	}
	res.RevisionID = m.ExGuid()
	res.RevisionManifestID = m.ExGuid()
	revision := element.DataElement{
		ID: res.RevisionManifestID,
		Payload: element.RevisionManifest{
			RevisionID:     res.RevisionID,
			BaseRevisionID: base,
			Roots:          []element.RevisionRoot{{Role: ident.RevisionRootRole, Object: root.ID}},
			ObjectGroups:   append([]ident.ExGuid(nil), res.ObjectGroupIDs...),
		},
	}

	res.CellManifestID = m.ExGuid()
	cell := element.DataElement{
		ID:      res.CellManifestID,
		Payload: element.CellManifest{CurrentRevision: res.RevisionID},
	}
	cells := []element.CellMapping{{Cell: ident.MainCell, Mapping: cell.ID}}

	roots := make([]element.StorageRoot, 0, len(cells))
	for _, c := range cells {
		roots = append(roots, element.StorageRoot{Role: ident.StorageRootRole, Cell: c.Cell})
	}
	res.StorageManifestID = m.ExGuid()
	manifest := element.DataElement{
		ID:      res.StorageManifestID,
		Payload: element.StorageManifest{Schema: ident.FileContentSchema, Roots: roots},
	}

	res.CellSerial = m.SerialNumber()
	if prev != nil {
		res.CellSerial = ident.SerialNumber{InstanceID: prev.CellSerial.InstanceID, Sequence: m.Seq.Next()}
	}
	cells[0].Serial = res.CellSerial

	revisions := []element.RevisionMapping{{Revision: res.RevisionID, Mapping: revision.ID, Serial: m.SerialNumber()}}
	var carried []element.DataElement
	if prev != nil {
		if e, ok := prev.Package.Lookup(prev.RevisionManifestID); ok {
			carried = append(carried, e)
			revisions = append(revisions, element.RevisionMapping{
				Revision: prev.RevisionID,
				Mapping:  prev.RevisionManifestID,
				Serial:   m.SerialNumber(),
			})
		}
	}

	res.StorageIndexID = m.ExGuid()
	index := element.DataElement{
		ID: res.StorageIndexID,
		Payload: element.StorageIndex{
			ManifestMapping:  manifest.ID,
			ManifestSerial:   m.SerialNumber(),
			CellMappings:     cells,
			RevisionMappings: revisions,
		},
	}

	elems := make([]element.DataElement, 0, len(groups)+len(blobs)+len(carried)+4)
	elems = append(elems, index, manifest, cell, revision)
	elems = append(elems, carried...)
	elems = append(elems, groups...)
	elems = append(elems, blobs...)
	pkg, err := element.NewPackage(elems...)
	if err != nil {
		return nil, err
	}
	res.Package = pkg

	log.Debug("encoded package",
		"storage_index", res.StorageIndexID,
		"bytes", len(data),
		"object_groups", len(groups),
		"blobs", len(blobs),
		"base_revision", base)
	return res, nil
}

// flatten packs objects into groups of at most GroupLimit objects, moving
// oversized leaves into ObjectDataBlob elements.
func (b *Builder) flatten(m *ident.Minter, objs []element.Object) (groups, blobs []element.DataElement) {
	var current []element.Object
	emit := func() {
		groups = append(groups, element.DataElement{ID: m.ExGuid(), Payload: element.ObjectGroup{Objects: current}})
		current = nil
	}
	for _, o := range objs {
		if b.BlobThreshold > 0 && o.Data[0] == byte(chunk.Leaf) && len(o.Data)-1 > b.BlobThreshold {
			blob := element.DataElement{ID: m.ExGuid(), Payload: element.ObjectDataBlob{Data: o.Data[1:]}}
			blobs = append(blobs, blob)
			o = element.Object{ID: o.ID, Data: o.Data[:1], Blob: blob.ID}
		}
		current = append(current, o)
		if b.GroupLimit > 0 && len(current) == b.GroupLimit {
			emit()
		}
	}
	if len(current) > 0 || len(groups) == 0 {
		emit()
	}
	return groups, blobs
}

func (b *Builder) minter() *ident.Minter {
	b.once.Do(func() {
		if b.Minter == nil {
			b.Minter = ident.NewMinter()
		}
	})
	return b.Minter
}

func (b *Builder) chunker() chunk.Chunker {
	if b.Chunker == nil {
		return chunk.FixedSize{}
	}
	return b.Chunker
}

func (b *Builder) logger() hclog.Logger {
	if b.Logger == nil {
		return hclog.NewNullLogger()
	}
	return b.Logger
}
