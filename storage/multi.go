package storage

import (
	"errors"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Multi provides deterministic, ordered read fallback across stores.
//
// Lookup order is the slice order in Stores; callers MUST supply a fixed
// order, typically the local cache first and the remote store last.
//
// Put writes only to the first store.
type Multi struct {
	Stores []Store
}

var _ Store = Multi{}

func (m Multi) Put(e element.DataElement) error {
	if len(m.Stores) == 0 {
		return errors.New("storage: Multi has no stores")
	}
	return m.Stores[0].Put(e)
}

func (m Multi) Get(id ident.ExGuid) (element.DataElement, error) {
	for _, s := range m.Stores {
		e, err := s.Get(id)
		if err == nil {
			return e, nil
		}
		if IsNotFound(err) {
			continue
		}
		return element.DataElement{}, err
	}
	return element.DataElement{}, ErrNotFound
}

func (m Multi) Has(id ident.ExGuid) bool {
	for _, s := range m.Stores {
		if s.Has(id) {
			return true
		}
	}
	return false
}
