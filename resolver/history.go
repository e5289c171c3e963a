package resolver

import (
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Revision is one step of a cell's revision chain.
type Revision struct {
	RevisionID         ident.ExGuid
	RevisionManifestID ident.ExGuid
	BaseRevisionID     ident.ExGuid
}

// History lists the revision chain of cell, newest first, by following
// BaseRevisionID through the storage index revision mappings.
//
// The chain is provenance only: every revision carries its complete object
// group list and no content is derived from a base. The walk stops at a null
// base, at a base the index does not map, or at a mapped base manifest absent
// from the package. A chain that revisits a revision is MalformedOrWrongSchema.
func History(pkg *element.Package, storageIndexID ident.ExGuid, cell ident.CellId) ([]Revision, error) {
	if cell.IsNull() {
		cell = ident.MainCell
	}
	index, found, err := element.Get[element.StorageIndex](pkg, storageIndexID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, element.NewError(element.ReferenceNotFound, storageIndexID, "storage index not in package")
	}
	cellManifestID, ok := index.CellIndex()[cell]
	if !ok {
		return nil, element.NewError(element.ReferenceNotFound, storageIndexID,
			"cell "+cell.String()+" is not mapped by the storage index")
	}
	cm, found, err := element.Get[element.CellManifest](pkg, cellManifestID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, element.NewError(element.IncompleteSnapshot, cellManifestID, "cell manifest not in package")
	}

	revisions := index.RevisionIndex()
	seen := map[ident.ExGuid]bool{}
	var out []Revision
	for rev := cm.CurrentRevision; !rev.IsNull(); {
		if seen[rev] {
			return nil, element.NewError(element.MalformedOrWrongSchema, rev, "revision chain contains a cycle")
		}
		seen[rev] = true

		mid, ok := revisions[rev]
		if !ok {
			break
		}
		rm, found, err := element.Get[element.RevisionManifest](pkg, mid)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		out = append(out, Revision{RevisionID: rev, RevisionManifestID: mid, BaseRevisionID: rm.BaseRevisionID})
		rev = rm.BaseRevisionID
	}
	return out, nil
}
