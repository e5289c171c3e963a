// Package storage defines the element store used as a client-side cache
// during incremental transfer, plus composition helpers.
package storage

import (
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Store is a minimal element store keyed by ExGuid.
//
// Contract:
// - Put MUST be idempotent.
// - Stored elements MUST be immutable: a different element under an existing id is ErrImmutable.
// - Get MUST return ErrNotFound when the id is absent.
type Store interface {
	Put(e element.DataElement) error
	Get(id ident.ExGuid) (element.DataElement, error)
	Has(id ident.ExGuid) bool
}

// PutPackage writes every element of pkg to s.
func PutPackage(s Store, pkg *element.Package) error {
	for _, e := range pkg.Elements() {
		if err := s.Put(e); err != nil {
			return err
		}
	}
	return nil
}
