package resolver

import (
	"fmt"
	"reflect"

	"xdao.co/revstore/chunk"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/validate"
)

// Content reconstructs the bytes held by the selected cell (the main cell
// by default).
//
// The package must be self-contained: completeness and schema are checked
// before any object is read.
func Content(pkg *element.Package, storageIndexID ident.ExGuid, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	snap, err := Resolve(pkg, storageIndexID, opts)
	if err != nil {
		return nil, err
	}
	rep, err := validate.Completeness(pkg, storageIndexID)
	if err != nil {
		return nil, err
	}
	if !rep.Complete() {
		first := rep.Missing[0]
		return nil, element.WrapError(element.IncompleteSnapshot, first.ID,
			fmt.Sprintf("package is missing %d referenced elements", len(rep.Missing)), rep.Err())
	}

	cell, ok := snap.Cell(opts.Cell)
	if !ok {
		return nil, element.NewError(element.ReferenceNotFound, snap.StorageManifestID,
			fmt.Sprintf("cell %s is not declared by the storage manifest", opts.Cell))
	}
	rootID, ok := cell.Root(ident.RevisionRootRole)
	if !ok {
		return nil, element.NewError(element.MalformedOrWrongSchema, cell.RevisionManifestID,
			"revision declares no content root")
	}

	src, err := newObjectSource(pkg, cell.ObjectGroups)
	if err != nil {
		return nil, err
	}
	root, err := chunk.Tree(src, rootID)
	if err != nil {
		return nil, err
	}
	data := chunk.Join(root)

	opts.Logger.Debug("materialized content",
		"storage_index", storageIndexID,
		"cell", cell.ID,
		"revision", cell.RevisionID,
		"bytes", len(data))
	return data, nil
}

// objectSource serves the objects of one revision's object groups.
type objectSource struct {
	pkg     *element.Package
	objects map[ident.ExGuid]element.Object
}

func newObjectSource(pkg *element.Package, groups []ident.ExGuid) (*objectSource, error) {
	src := &objectSource{pkg: pkg, objects: make(map[ident.ExGuid]element.Object)}
	for _, gid := range groups {
		group, found, err := element.Get[element.ObjectGroup](pkg, gid)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, element.NewError(element.IncompleteSnapshot, gid, "object group not in package")
		}
		for _, o := range group.Objects {
			if prev, ok := src.objects[o.ID]; ok {
				if !reflect.DeepEqual(prev, o) {
					return nil, element.NewError(element.MalformedOrWrongSchema, o.ID,
						"object appears with conflicting content")
				}
				continue
			}
			src.objects[o.ID] = o
		}
	}
	return src, nil
}

func (s *objectSource) Object(id ident.ExGuid) (element.Object, bool) {
	o, ok := s.objects[id]
	return o, ok
}

func (s *objectSource) Blob(id ident.ExGuid) ([]byte, bool) {
	b, found, err := element.Get[element.ObjectDataBlob](s.pkg, id)
	if err != nil || !found {
		return nil, false
	}
	return b.Data, true
}
