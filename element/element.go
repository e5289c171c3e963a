// Package element defines data elements, the typed and identified units of a
// revision-store package, and the package container that carries them.
package element

import (
	"fmt"

	"xdao.co/revstore/ident"
)

// Kind is the discriminant of a data element payload.
type Kind uint8

const (
	KindStorageIndex Kind = iota + 1
	KindStorageManifest
	KindCellManifest
	KindRevisionManifest
	KindObjectGroup
	KindObjectDataBlob
)

func (k Kind) String() string {
	switch k {
	case KindStorageIndex:
		return "StorageIndex"
	case KindStorageManifest:
		return "StorageManifest"
	case KindCellManifest:
		return "CellManifest"
	case KindRevisionManifest:
		return "RevisionManifest"
	case KindObjectGroup:
		return "ObjectGroup"
	case KindObjectDataBlob:
		return "ObjectDataBlob"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Valid reports whether k names a known payload kind.
func (k Kind) Valid() bool { return k >= KindStorageIndex && k <= KindObjectDataBlob }

// Payload is the closed set of element payload shapes.
type Payload interface {
	Kind() Kind
	isPayload()
}

// DataElement is the atomic transmissible unit. Its ID is assigned once and
// two elements with the same ID are the same logical entity.
type DataElement struct {
	ID      ident.ExGuid
	Payload Payload
}

// Kind returns the payload kind, or 0 for an element without payload.
func (e DataElement) Kind() Kind {
	if e.Payload == nil {
		return 0
	}
	return e.Payload.Kind()
}

func (e DataElement) String() string {
	return fmt.Sprintf("%s[%s]", e.Kind(), e.ID)
}

// CellMapping maps a cell to its cell manifest element.
type CellMapping struct {
	Cell    ident.CellId
	Mapping ident.ExGuid
	Serial  ident.SerialNumber
}

// RevisionMapping maps a revision id to its revision manifest element.
type RevisionMapping struct {
	Revision ident.ExGuid
	Mapping  ident.ExGuid
	Serial   ident.SerialNumber
}

// StorageIndex is the package entry point.
type StorageIndex struct {
	ManifestMapping  ident.ExGuid
	ManifestSerial   ident.SerialNumber
	CellMappings     []CellMapping
	RevisionMappings []RevisionMapping
}

// CellIndex returns the cell mappings as a lookup table.
func (s StorageIndex) CellIndex() map[ident.CellId]ident.ExGuid {
	m := make(map[ident.CellId]ident.ExGuid, len(s.CellMappings))
	for _, c := range s.CellMappings {
		m[c.Cell] = c.Mapping
	}
	return m
}

// RevisionIndex returns the revision mappings as a lookup table.
func (s StorageIndex) RevisionIndex() map[ident.ExGuid]ident.ExGuid {
	m := make(map[ident.ExGuid]ident.ExGuid, len(s.RevisionMappings))
	for _, r := range s.RevisionMappings {
		m[r.Revision] = r.Mapping
	}
	return m
}

// StorageRoot declares a cell under a role.
type StorageRoot struct {
	Role ident.ExGuid
	Cell ident.CellId
}

// StorageManifest declares the structural schema and the cells of a document.
type StorageManifest struct {
	Schema ident.Guid
	Roots  []StorageRoot
}

// CellManifest points at the current revision of a cell.
type CellManifest struct {
	CurrentRevision ident.ExGuid
}

// RevisionRoot declares a root object under a role.
type RevisionRoot struct {
	Role   ident.ExGuid
	Object ident.ExGuid
}

// RevisionManifest lists the object groups composing a revision. A null
// BaseRevisionID marks an initial revision. The group list is always
// complete, never a delta from the base.
type RevisionManifest struct {
	RevisionID     ident.ExGuid
	BaseRevisionID ident.ExGuid
	Roots          []RevisionRoot
	ObjectGroups   []ident.ExGuid
}

// Root returns the object declared under role.
func (r RevisionManifest) Root(role ident.ExGuid) (ident.ExGuid, bool) {
	for _, root := range r.Roots {
		if root.Role == role {
			return root.Object, true
		}
	}
	return ident.NullExGuid, false
}

// Object is an object group entry. Data holds the blob inline unless Blob
// names an ObjectDataBlob element carrying it.
type Object struct {
	ID         ident.ExGuid
	Data       []byte
	References []ident.ExGuid
	Blob       ident.ExGuid
}

// ObjectGroup is an ordered list of objects.
type ObjectGroup struct {
	Objects []Object
}

// BlobReferences returns the ObjectDataBlob ids referenced by the group, in order.
func (g ObjectGroup) BlobReferences() []ident.ExGuid {
	var out []ident.ExGuid
	for _, o := range g.Objects {
		if !o.Blob.IsNull() {
			out = append(out, o.Blob)
		}
	}
	return out
}

// ObjectDataBlob carries out-of-line object bytes.
type ObjectDataBlob struct {
	Data []byte
}

func (StorageIndex) Kind() Kind     { return KindStorageIndex }
func (StorageManifest) Kind() Kind  { return KindStorageManifest }
func (CellManifest) Kind() Kind     { return KindCellManifest }
func (RevisionManifest) Kind() Kind { return KindRevisionManifest }
func (ObjectGroup) Kind() Kind      { return KindObjectGroup }
func (ObjectDataBlob) Kind() Kind   { return KindObjectDataBlob }

func (StorageIndex) isPayload()     {}
func (StorageManifest) isPayload()  {}
func (CellManifest) isPayload()     {}
func (RevisionManifest) isPayload() {}
func (ObjectGroup) isPayload()      {}
func (ObjectDataBlob) isPayload()   {}
