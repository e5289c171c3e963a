// Package validate provides the admission checks run on a received package
// before any content is materialized.
//
// Completeness and schema are independent: an incomplete package may carry
// the expected schema and a complete one may not.
package validate

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Missing is a referenced element absent from the package.
type Missing struct {
	ID ident.ExGuid
	// Kind is the element kind the referrer expects.
	Kind element.Kind
	// Referrer is the element holding the reference; null for the storage index itself.
	Referrer ident.ExGuid
}

// Report is the outcome of a completeness walk.
type Report struct {
	StorageIndexID ident.ExGuid
	// Cells is the number of cells declared by the storage manifest.
	Cells   int
	Missing []Missing
}

// Complete reports whether every reference resolved.
func (r Report) Complete() bool { return len(r.Missing) == 0 }

// MissingIDs returns the ids of all missing elements.
func (r Report) MissingIDs() []ident.ExGuid {
	out := make([]ident.ExGuid, 0, len(r.Missing))
	for _, m := range r.Missing {
		out = append(out, m.ID)
	}
	return out
}

// Err returns nil for a complete report, otherwise one IncompleteSnapshot
// error per missing element aggregated into a multierror.
func (r Report) Err() error {
	var merr *multierror.Error
	for _, m := range r.Missing {
		merr = multierror.Append(merr, element.NewError(element.IncompleteSnapshot, m.ID,
			fmt.Sprintf("%s referenced by %s is not in the package", m.Kind, m.Referrer)))
	}
	return merr.ErrorOrNil()
}

// Completeness walks the manifest chain from the storage index through every
// declared cell and records each reference that does not resolve.
//
// Absent elements are reported, not returned as errors: incompleteness is
// the expected state during incremental transfer. Errors are reserved for
// structural corruption: an element of the wrong kind (MalformedOrWrongSchema)
// or a cell or revision missing from the storage index mappings
// (ReferenceNotFound).
func Completeness(pkg *element.Package, storageIndexID ident.ExGuid) (Report, error) {
	rep := Report{StorageIndexID: storageIndexID}
	miss := func(id ident.ExGuid, kind element.Kind, referrer ident.ExGuid) {
		rep.Missing = append(rep.Missing, Missing{ID: id, Kind: kind, Referrer: referrer})
	}

	index, found, err := element.Get[element.StorageIndex](pkg, storageIndexID)
	if err != nil {
		return rep, err
	}
	if !found {
		miss(storageIndexID, element.KindStorageIndex, ident.NullExGuid)
		return rep, nil
	}

	manifest, found, err := element.Get[element.StorageManifest](pkg, index.ManifestMapping)
	if err != nil {
		return rep, err
	}
	if !found {
		miss(index.ManifestMapping, element.KindStorageManifest, storageIndexID)
		return rep, nil
	}

	cells := index.CellIndex()
	revisions := index.RevisionIndex()
	rep.Cells = len(manifest.Roots)
	for _, root := range manifest.Roots {
		cellID, ok := cells[root.Cell]
		if !ok {
			return rep, element.NewError(element.ReferenceNotFound, index.ManifestMapping,
				fmt.Sprintf("cell %s is not mapped by the storage index", root.Cell))
		}
		cell, found, err := element.Get[element.CellManifest](pkg, cellID)
		if err != nil {
			return rep, err
		}
		if !found {
			miss(cellID, element.KindCellManifest, storageIndexID)
			continue
		}

		revID, ok := revisions[cell.CurrentRevision]
		if !ok {
			return rep, element.NewError(element.ReferenceNotFound, cellID,
				fmt.Sprintf("revision %s is not mapped by the storage index", cell.CurrentRevision))
		}
		rev, found, err := element.Get[element.RevisionManifest](pkg, revID)
		if err != nil {
			return rep, err
		}
		if !found {
			miss(revID, element.KindRevisionManifest, cellID)
			continue
		}

		for _, gid := range rev.ObjectGroups {
			group, found, err := element.Get[element.ObjectGroup](pkg, gid)
			if err != nil {
				return rep, err
			}
			if !found {
				miss(gid, element.KindObjectGroup, revID)
				continue
			}
			for _, bid := range group.BlobReferences() {
				_, found, err := element.Get[element.ObjectDataBlob](pkg, bid)
				if err != nil {
					return rep, err
				}
				if !found {
					miss(bid, element.KindObjectDataBlob, gid)
				}
			}
		}
	}
	return rep, nil
}

// IsSelfContained reports whether every reference reachable from the storage
// index resolves inside pkg, for all declared cells. False means a follow-up
// fetch is needed (or the package is corrupt), not a fatal condition.
func IsSelfContained(pkg *element.Package, storageIndexID ident.ExGuid) bool {
	rep, err := Completeness(pkg, storageIndexID)
	return err == nil && rep.Complete()
}

// Schema returns the schema declared by the storage manifest behind storageIndexID.
func Schema(pkg *element.Package, storageIndexID ident.ExGuid) (ident.Guid, bool) {
	index, found, err := element.Get[element.StorageIndex](pkg, storageIndexID)
	if err != nil || !found {
		return ident.NilGuid, false
	}
	manifest, found, err := element.Get[element.StorageManifest](pkg, index.ManifestMapping)
	if err != nil || !found {
		return ident.NilGuid, false
	}
	return manifest.Schema, true
}

// HasExpectedSchema reports whether the storage manifest declares want.
func HasExpectedSchema(pkg *element.Package, storageIndexID ident.ExGuid, want ident.Guid) bool {
	got, ok := Schema(pkg, storageIndexID)
	return ok && got == want
}

// Orphans returns, in package order, the elements not reachable from the
// storage index through any mapping or manifest.
func Orphans(pkg *element.Package, storageIndexID ident.ExGuid) []ident.ExGuid {
	reach := map[ident.ExGuid]bool{storageIndexID: true}
	if index, found, err := element.Get[element.StorageIndex](pkg, storageIndexID); err == nil && found {
		reach[index.ManifestMapping] = true
		for _, c := range index.CellMappings {
			reach[c.Mapping] = true
		}
		for _, r := range index.RevisionMappings {
			reach[r.Mapping] = true
			rev, found, err := element.Get[element.RevisionManifest](pkg, r.Mapping)
			if err != nil || !found {
				continue
			}
			for _, gid := range rev.ObjectGroups {
				reach[gid] = true
				group, found, err := element.Get[element.ObjectGroup](pkg, gid)
				if err != nil || !found {
					continue
				}
				for _, bid := range group.BlobReferences() {
					reach[bid] = true
				}
			}
		}
	}

	var out []ident.ExGuid
	for _, e := range pkg.Elements() {
		if !reach[e.ID] {
			out = append(out, e.ID)
		}
	}
	return out
}
