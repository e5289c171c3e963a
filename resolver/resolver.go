// Package resolver walks a data element package from its storage index down
// to the content of each cell.
//
// Every step is a lookup against the package. A reference whose absence is
// never expected fails with ReferenceNotFound; a mapped element absent from
// the package fails with IncompleteSnapshot; an element of the wrong kind or
// an unexpected schema fails with MalformedOrWrongSchema. No partial results
// are returned on error.
package resolver

import (
	"fmt"

	"xdao.co/revstore/compliance"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Snapshot is the resolved manifest chain of a package.
type Snapshot struct {
	StorageIndexID    ident.ExGuid
	StorageManifestID ident.ExGuid
	Schema            ident.Guid
	Cells             []Cell
}

// Cell is one declared cell and its current revision.
type Cell struct {
	Role               ident.ExGuid
	ID                 ident.CellId
	CellManifestID     ident.ExGuid
	RevisionID         ident.ExGuid
	RevisionManifestID ident.ExGuid
	// BaseRevisionID is null for a first revision.
	BaseRevisionID ident.ExGuid
	Roots          []element.RevisionRoot
	ObjectGroups   []ident.ExGuid
}

// Root returns the object declared for role by the cell's revision.
func (c Cell) Root(role ident.ExGuid) (ident.ExGuid, bool) {
	for _, r := range c.Roots {
		if r.Role == role {
			return r.Object, true
		}
	}
	return ident.NullExGuid, false
}

// Cell returns the resolved cell with the given id.
func (s *Snapshot) Cell(id ident.CellId) (Cell, bool) {
	for _, c := range s.Cells {
		if c.ID == id {
			return c, true
		}
	}
	return Cell{}, false
}

// Resolve walks the storage index, storage manifest, and every declared
// cell's manifest and current revision manifest.
//
// Object groups are not visited; see Content and validate.Completeness.
func Resolve(pkg *element.Package, storageIndexID ident.ExGuid, opts Options) (*Snapshot, error) {
	opts = opts.withDefaults()

	index, found, err := element.Get[element.StorageIndex](pkg, storageIndexID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, element.NewError(element.ReferenceNotFound, storageIndexID, "storage index not in package")
	}

	manifest, found, err := element.Get[element.StorageManifest](pkg, index.ManifestMapping)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, element.NewError(element.IncompleteSnapshot, index.ManifestMapping, "storage manifest not in package")
	}
	if manifest.Schema != opts.ExpectedSchema {
		return nil, element.NewError(element.MalformedOrWrongSchema, index.ManifestMapping,
			fmt.Sprintf("schema %s, want %s", manifest.Schema, opts.ExpectedSchema))
	}

	snap := &Snapshot{
		StorageIndexID:    storageIndexID,
		StorageManifestID: index.ManifestMapping,
		Schema:            manifest.Schema,
		Cells:             make([]Cell, 0, len(manifest.Roots)),
	}

	cells := index.CellIndex()
	revisions := index.RevisionIndex()
	for _, root := range manifest.Roots {
		cellManifestID, ok := cells[root.Cell]
		if !ok {
			return nil, element.NewError(element.ReferenceNotFound, index.ManifestMapping,
				fmt.Sprintf("cell %s is not mapped by the storage index", root.Cell))
		}
		cm, found, err := element.Get[element.CellManifest](pkg, cellManifestID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, element.NewError(element.IncompleteSnapshot, cellManifestID, "cell manifest not in package")
		}

		revManifestID, ok := revisions[cm.CurrentRevision]
		if !ok {
			return nil, element.NewError(element.ReferenceNotFound, cellManifestID,
				fmt.Sprintf("revision %s is not mapped by the storage index", cm.CurrentRevision))
		}
		rm, found, err := element.Get[element.RevisionManifest](pkg, revManifestID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, element.NewError(element.IncompleteSnapshot, revManifestID, "revision manifest not in package")
		}
		if rm.RevisionID != cm.CurrentRevision {
			return nil, element.NewError(element.MalformedOrWrongSchema, revManifestID,
				fmt.Sprintf("revision manifest declares %s, mapped as %s", rm.RevisionID, cm.CurrentRevision))
		}

		snap.Cells = append(snap.Cells, Cell{
			Role:               root.Role,
			ID:                 root.Cell,
			CellManifestID:     cellManifestID,
			RevisionID:         rm.RevisionID,
			RevisionManifestID: revManifestID,
			BaseRevisionID:     rm.BaseRevisionID,
			Roots:              rm.Roots,
			ObjectGroups:       rm.ObjectGroups,
		})
	}

	if opts.Mode == compliance.Strict {
		if err := enforceStrict(pkg, storageIndexID); err != nil {
			return nil, err
		}
	}

	opts.Logger.Debug("resolved package",
		"storage_index", storageIndexID,
		"cells", len(snap.Cells),
		"mode", opts.Mode)
	return snap, nil
}
