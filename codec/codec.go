// Package codec serializes data elements and packages to bytes.
//
// Encoding is CBOR with Core Deterministic Encoding (RFC 8949 §4.2): the same
// package always produces identical bytes. Each element travels in an
// envelope carrying its id and kind tag; decoding dispatches on the tag.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"xdao.co/revstore/compliance"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// FormatVersion is the package wire format version.
const FormatVersion = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

type envelope struct {
	ID      ident.ExGuid    `cbor:"1,keyasint"`
	Kind    element.Kind    `cbor:"2,keyasint"`
	Payload cbor.RawMessage `cbor:"3,keyasint"`
}

type wirePackage struct {
	Version  int        `cbor:"1,keyasint"`
	Elements []envelope `cbor:"2,keyasint"`
}

func malformed(id ident.ExGuid, msg string, cause error) error {
	return element.WrapError(element.MalformedOrWrongSchema, id, msg, cause)
}

func toEnvelope(e element.DataElement) (envelope, error) {
	if e.Payload == nil {
		return envelope{}, malformed(e.ID, "element has no payload", nil)
	}
	raw, err := encMode.Marshal(e.Payload)
	if err != nil {
		return envelope{}, err
	}
	return envelope{ID: e.ID, Kind: e.Kind(), Payload: raw}, nil
}

func fromEnvelope(env envelope) (element.DataElement, error) {
	var (
		p   element.Payload
		err error
	)
	switch env.Kind {
	case element.KindStorageIndex:
		var v element.StorageIndex
		err = decMode.Unmarshal(env.Payload, &v)
		p = v
	case element.KindStorageManifest:
		var v element.StorageManifest
		err = decMode.Unmarshal(env.Payload, &v)
		p = v
	case element.KindCellManifest:
		var v element.CellManifest
		err = decMode.Unmarshal(env.Payload, &v)
		p = v
	case element.KindRevisionManifest:
		var v element.RevisionManifest
		err = decMode.Unmarshal(env.Payload, &v)
		p = v
	case element.KindObjectGroup:
		var v element.ObjectGroup
		err = decMode.Unmarshal(env.Payload, &v)
		p = v
	case element.KindObjectDataBlob:
		var v element.ObjectDataBlob
		err = decMode.Unmarshal(env.Payload, &v)
		p = v
	default:
		return element.DataElement{}, malformed(env.ID, fmt.Sprintf("unknown element kind %d", uint8(env.Kind)), nil)
	}
	if err != nil {
		return element.DataElement{}, malformed(env.ID, "undecodable "+env.Kind.String()+" payload", err)
	}
	return element.DataElement{ID: env.ID, Payload: p}, nil
}

// EncodeElement encodes a single element.
func EncodeElement(e element.DataElement) ([]byte, error) {
	env, err := toEnvelope(e)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(env)
}

// DecodeElement decodes a single element.
func DecodeElement(b []byte) (element.DataElement, error) {
	var env envelope
	if err := decMode.Unmarshal(b, &env); err != nil {
		return element.DataElement{}, malformed(ident.NullExGuid, "undecodable element envelope", err)
	}
	return fromEnvelope(env)
}

// EncodePackage encodes every element of pkg in package order.
func EncodePackage(pkg *element.Package) ([]byte, error) {
	w := wirePackage{Version: FormatVersion, Elements: make([]envelope, 0, pkg.Len())}
	for _, e := range pkg.Elements() {
		env, err := toEnvelope(e)
		if err != nil {
			return nil, err
		}
		w.Elements = append(w.Elements, env)
	}
	return encMode.Marshal(w)
}

// DecodePackage decodes package bytes.
//
// Elements sharing an id must be identical; in Strict mode any repeated id
// is rejected.
func DecodePackage(b []byte, mode compliance.ComplianceMode) (*element.Package, error) {
	var w wirePackage
	if err := decMode.Unmarshal(b, &w); err != nil {
		return nil, malformed(ident.NullExGuid, "undecodable package", err)
	}
	if w.Version != FormatVersion {
		return nil, malformed(ident.NullExGuid, fmt.Sprintf("unsupported package format version %d", w.Version), nil)
	}
	elems := make([]element.DataElement, 0, len(w.Elements))
	seen := make(map[ident.ExGuid]bool, len(w.Elements))
	for _, env := range w.Elements {
		if mode == compliance.Strict && seen[env.ID] {
			return nil, malformed(env.ID, "duplicate element id", nil)
		}
		seen[env.ID] = true
		e, err := fromEnvelope(env)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return element.NewPackage(elems...)
}
