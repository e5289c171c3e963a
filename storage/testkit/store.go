// Package testkit holds a conformance suite for storage.Store implementations.
package testkit

import (
	"testing"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/storage"
)

// NewStore constructs a fresh, empty Store for a test.
// The returned Store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.Store

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()
	m := ident.NewMinter()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := element.DataElement{
			ID: m.ExGuid(),
			Payload: element.ObjectGroup{Objects: []element.Object{
				{ID: m.ExGuid(), Data: []byte("hello, revstore"), References: []ident.ExGuid{m.ExGuid()}},
			}},
		}
		if err := s.Put(want); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := s.Get(want.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ID != want.ID || got.Kind() != element.KindObjectGroup {
			t.Fatalf("Get returned %s want %s", got, want)
		}
		g := got.Payload.(element.ObjectGroup)
		if len(g.Objects) != 1 || string(g.Objects[0].Data) != "hello, revstore" {
			t.Fatalf("Get payload mismatch: %+v", g)
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		e := element.DataElement{ID: m.ExGuid(), Payload: element.CellManifest{CurrentRevision: m.ExGuid()}}
		if err := s.Put(e); err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		if err := s.Put(e); err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
	})

	t.Run("RejectMutation", func(t *testing.T) {
		s := newStore(t)
		id := m.ExGuid()
		if err := s.Put(element.DataElement{ID: id, Payload: element.ObjectDataBlob{Data: []byte("a")}}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		err := s.Put(element.DataElement{ID: id, Payload: element.ObjectDataBlob{Data: []byte("b")}})
		if err == nil {
			t.Fatalf("Put of a different element under an existing id must fail")
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		e := element.DataElement{ID: m.ExGuid(), Payload: element.ObjectDataBlob{Data: []byte("missing")}}
		if s.Has(e.ID) {
			t.Fatalf("Has returned true for missing id")
		}
		if _, err := s.Get(e.ID); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
		if err := s.Put(e); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !s.Has(e.ID) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectNullID", func(t *testing.T) {
		s := newStore(t)
		if s.Has(ident.NullExGuid) {
			t.Fatalf("Has should be false for the null id")
		}
		if _, err := s.Get(ident.NullExGuid); err == nil {
			t.Fatalf("Get should fail for the null id")
		}
	})
}
