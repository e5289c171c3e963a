package element

import (
	"fmt"
	"reflect"

	"xdao.co/revstore/ident"
)

// Package is an order-independent bag of data elements keyed by id.
//
// Order is preserved for encoding stability only; elements are always
// located by id. A Package is never mutated after construction, so
// concurrent readers need no locking.
type Package struct {
	elems []DataElement
	index map[ident.ExGuid]int
}

// NewPackage builds a package. Identical duplicates collapse into one
// element; two different elements under the same id are rejected.
func NewPackage(elems ...DataElement) (*Package, error) {
	p := &Package{index: make(map[ident.ExGuid]int, len(elems))}
	if err := p.add(elems); err != nil {
		return nil, err
	}
	return p, nil
}

// MustPackage is like NewPackage but panics on error.
func MustPackage(elems ...DataElement) *Package {
	p, err := NewPackage(elems...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Package) add(elems []DataElement) error {
	for _, e := range elems {
		if e.Payload == nil {
			return NewError(MalformedOrWrongSchema, e.ID, "element has no payload")
		}
		if i, ok := p.index[e.ID]; ok {
			if !reflect.DeepEqual(p.elems[i], e) {
				return NewError(MalformedOrWrongSchema, e.ID, "conflicting elements share an id")
			}
			continue
		}
		p.index[e.ID] = len(p.elems)
		p.elems = append(p.elems, e)
	}
	return nil
}

// With returns a new package holding p's elements followed by elems.
func (p *Package) With(elems ...DataElement) (*Package, error) {
	out := &Package{index: make(map[ident.ExGuid]int, p.Len()+len(elems))}
	if p != nil {
		out.elems = make([]DataElement, 0, len(p.elems)+len(elems))
		if err := out.add(p.elems); err != nil {
			return nil, err
		}
	}
	if err := out.add(elems); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Package) Len() int {
	if p == nil {
		return 0
	}
	return len(p.elems)
}

// Lookup finds an element by id. Absence is a normal outcome.
func (p *Package) Lookup(id ident.ExGuid) (DataElement, bool) {
	if p == nil {
		return DataElement{}, false
	}
	i, ok := p.index[id]
	if !ok {
		return DataElement{}, false
	}
	return p.elems[i], true
}

func (p *Package) Has(id ident.ExGuid) bool {
	_, ok := p.Lookup(id)
	return ok
}

// Elements returns the elements in package order.
func (p *Package) Elements() []DataElement {
	if p == nil {
		return nil
	}
	return append([]DataElement(nil), p.elems...)
}

// OfKind returns the elements of kind k in package order.
func (p *Package) OfKind(k Kind) []DataElement {
	if p == nil {
		return nil
	}
	var out []DataElement
	for _, e := range p.elems {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of elements of each kind.
func (p *Package) Count() map[Kind]int {
	out := make(map[Kind]int)
	if p == nil {
		return out
	}
	for _, e := range p.elems {
		out[e.Kind()]++
	}
	return out
}

// Get looks up id and asserts its payload type.
//
// found is false when id is absent. A present element of another kind is a
// MalformedOrWrongSchema error.
func Get[T Payload](p *Package, id ident.ExGuid) (payload T, found bool, err error) {
	e, ok := p.Lookup(id)
	if !ok {
		return payload, false, nil
	}
	v, ok := e.Payload.(T)
	if !ok {
		return payload, true, NewError(MalformedOrWrongSchema, id,
			fmt.Sprintf("expected %s element, found %s", payload.Kind(), e.Kind()))
	}
	return v, true, nil
}
