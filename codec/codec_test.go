package codec

import (
	"bytes"
	"testing"

	"xdao.co/revstore/builder"
	"xdao.co/revstore/chunk"
	"xdao.co/revstore/compliance"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

func encoded(t *testing.T) *builder.Result {
	t.Helper()
	b := &builder.Builder{GroupLimit: 2, BlobThreshold: 2, Chunker: chunk.FixedSize{Size: 3}}
	res, err := b.Encode([]byte("hello world"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return res
}

func TestPackage_RoundTripIsByteStable(t *testing.T) {
	res := encoded(t)
	b1, err := EncodePackage(res.Package)
	if err != nil {
		t.Fatalf("EncodePackage: %v", err)
	}
	pkg, err := DecodePackage(b1, compliance.Strict)
	if err != nil {
		t.Fatalf("DecodePackage: %v", err)
	}
	if pkg.Len() != res.Package.Len() {
		t.Fatalf("Len=%d want %d", pkg.Len(), res.Package.Len())
	}
	for _, e := range res.Package.Elements() {
		got, ok := pkg.Lookup(e.ID)
		if !ok || got.Kind() != e.Kind() {
			t.Fatalf("element %s lost in round trip", e)
		}
	}
	b2, err := EncodePackage(pkg)
	if err != nil {
		t.Fatalf("EncodePackage(2): %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Fatalf("re-encoding changed the bytes")
	}
}

func TestElement_RoundTrip(t *testing.T) {
	m := ident.NewMinter()
	e := element.DataElement{
		ID: m.ExGuid(),
		Payload: element.StorageIndex{
			ManifestMapping:  m.ExGuid(),
			ManifestSerial:   m.SerialNumber(),
			CellMappings:     []element.CellMapping{{Cell: ident.MainCell, Mapping: m.ExGuid(), Serial: m.SerialNumber()}},
			RevisionMappings: []element.RevisionMapping{{Revision: m.ExGuid(), Mapping: m.ExGuid(), Serial: m.SerialNumber()}},
		},
	}
	b, err := EncodeElement(e)
	if err != nil {
		t.Fatalf("EncodeElement: %v", err)
	}
	got, err := DecodeElement(b)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	if got.ID != e.ID || got.Kind() != element.KindStorageIndex {
		t.Fatalf("got %s want %s", got, e)
	}
	idx := got.Payload.(element.StorageIndex)
	want := e.Payload.(element.StorageIndex)
	if idx.CellMappings[0] != want.CellMappings[0] || idx.RevisionMappings[0] != want.RevisionMappings[0] || idx.ManifestSerial != want.ManifestSerial {
		t.Fatalf("mappings changed in round trip")
	}
}

func TestDecodeElement_UnknownKind(t *testing.T) {
	b, err := encMode.Marshal(envelope{ID: ident.NewMinter().ExGuid(), Kind: 99, Payload: []byte{0xa0}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	_, err = DecodeElement(b)
	if !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("got %v want MalformedOrWrongSchema", err)
	}
}

func TestDecodePackage_Garbage(t *testing.T) {
	_, err := DecodePackage([]byte("definitely not cbor"), compliance.Permissive)
	if !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("got %v want MalformedOrWrongSchema", err)
	}
}

func TestDecodePackage_Duplicates(t *testing.T) {
	e := element.DataElement{ID: ident.NewMinter().ExGuid(), Payload: element.ObjectDataBlob{Data: []byte("b")}}
	env, err := toEnvelope(e)
	if err != nil {
		t.Fatalf("toEnvelope: %v", err)
	}
	b, err := encMode.Marshal(wirePackage{Version: FormatVersion, Elements: []envelope{env, env}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	pkg, err := DecodePackage(b, compliance.Permissive)
	if err != nil {
		t.Fatalf("permissive decode: %v", err)
	}
	if pkg.Len() != 1 {
		t.Fatalf("identical duplicates must collapse, Len=%d", pkg.Len())
	}

	_, err = DecodePackage(b, compliance.Strict)
	if !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("strict decode: got %v want MalformedOrWrongSchema", err)
	}
}

func TestDecodePackage_WrongVersion(t *testing.T) {
	b, err := encMode.Marshal(wirePackage{Version: FormatVersion + 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := DecodePackage(b, compliance.Permissive); !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("got %v want MalformedOrWrongSchema", err)
	}
}
