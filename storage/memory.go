package storage

import (
	"bytes"
	"sync"

	"xdao.co/revstore/codec"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Memory is an in-process Store. Elements are held in encoded form so the
// immutability check compares exact bytes.
type Memory struct {
	mu sync.RWMutex
	m  map[ident.ExGuid][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{m: make(map[ident.ExGuid][]byte)}
}

func (s *Memory) Put(e element.DataElement) error {
	if e.ID.IsNull() {
		return ErrInvalidID
	}
	b, err := codec.EncodeElement(e)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[e.ID]; ok {
		if !bytes.Equal(existing, b) {
			return ErrImmutable
		}
		return nil
	}
	s.m[e.ID] = b
	return nil
}

func (s *Memory) Get(id ident.ExGuid) (element.DataElement, error) {
	if id.IsNull() {
		return element.DataElement{}, ErrInvalidID
	}
	s.mu.RLock()
	b, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return element.DataElement{}, ErrNotFound
	}
	e, err := codec.DecodeElement(b)
	if err != nil {
		return element.DataElement{}, err
	}
	if e.ID != id {
		return element.DataElement{}, ErrIDMismatch
	}
	return e, nil
}

func (s *Memory) Has(id ident.ExGuid) bool {
	if id.IsNull() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[id]
	return ok
}

// Len returns the number of stored elements.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
