package storage

import (
	"fmt"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// NamedStore associates a Store with a stable backend name.
type NamedStore struct {
	Name  string
	Store Store
}

// Replicating writes to all configured backends and reads with ordered
// fallback. A write fails as soon as any backend rejects it.
type Replicating struct {
	Backends []NamedStore
}

var _ Store = (*Replicating)(nil)

// PutAll writes e to every backend and returns the names of the backends
// that accepted it before any failure.
func (r Replicating) PutAll(e element.DataElement) ([]string, error) {
	if len(r.Backends) == 0 {
		return nil, fmt.Errorf("storage: Replicating has no backends")
	}
	done := make([]string, 0, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return done, fmt.Errorf("storage: nil store for backend %q", b.Name)
		}
		if err := b.Store.Put(e); err != nil {
			return done, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		done = append(done, b.Name)
	}
	return done, nil
}

func (r Replicating) Put(e element.DataElement) error {
	_, err := r.PutAll(e)
	return err
}

func (r Replicating) Get(id ident.ExGuid) (element.DataElement, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		e, err := b.Store.Get(id)
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

func (r Replicating) Has(id ident.ExGuid) bool {
	for _, b := range r.Backends {
		if b.Store != nil && b.Store.Has(id) {
			return true
		}
	}
	return false
}
