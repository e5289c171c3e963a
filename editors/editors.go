// Package editors reads and writes the editors table, a compressed metadata
// record set embedded in an object group.
//
// The table is located by sniffing: an object whose bytes equal Magic is
// followed, in the same object group, by an object holding the
// raw-deflate-compressed UTF-8 XML of the table.
package editors

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"
	"golang.org/x/text/encoding/unicode"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// Magic marks the object preceding a compressed editors table.
var Magic = [8]byte{0x1A, 0x5A, 0x3A, 0x30, 0x00, 0x00, 0x00, 0x00}

// MaxDecompressed bounds the inflated table size.
const MaxDecompressed = 64 << 20

// Editor is one record of the editors table.
type Editor struct {
	CacheID             string
	FriendlyName        string
	LoginName           string
	SIPAddress          string
	EmailAddress        string
	HasEditorPermission bool
	Timeout             int64
	// Metadata values are decoded text; on the wire they are base64 UTF-16LE.
	Metadata map[string]string
}

// IsNotFound reports whether err means the table is absent.
func IsNotFound(err error) bool { return element.IsKind(err, element.SubFormatNotFound) }

// Extract scans every object group of pkg for the editors table.
//
// A package without the table yields a SubFormatNotFound error; callers
// should treat that as optional data being absent.
func Extract(pkg *element.Package) ([]Editor, error) {
	for _, e := range pkg.OfKind(element.KindObjectGroup) {
		g := e.Payload.(element.ObjectGroup)
		for i, obj := range g.Objects {
			if !bytes.Equal(obj.Data, Magic[:]) {
				continue
			}
			if i+1 >= len(g.Objects) {
				return nil, element.NewError(element.MalformedOrWrongSchema, obj.ID, "editors table marker is the last object of its group")
			}
			next := g.Objects[i+1]
			payload := next.Data
			if !next.Blob.IsNull() {
				blob, found, err := element.Get[element.ObjectDataBlob](pkg, next.Blob)
				if err != nil {
					return nil, err
				}
				if !found {
					return nil, element.NewError(element.IncompleteSnapshot, next.Blob, "editors table blob missing")
				}
				payload = blob.Data
			}
			text, err := Inflate(payload)
			if err != nil {
				return nil, element.WrapError(element.MalformedOrWrongSchema, next.ID, "editors table does not inflate", err)
			}
			eds, err := Parse(text)
			if err != nil {
				return nil, element.WrapError(element.MalformedOrWrongSchema, next.ID, "editors table does not parse", err)
			}
			return eds, nil
		}
	}
	return nil, element.NewError(element.SubFormatNotFound, ident.NullExGuid, "editors table not present")
}

// Inflate decompresses raw deflate data. The decompressed size is not
// declared up front; the buffer starts at three times the input and is
// trimmed to what was produced.
func Inflate(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	var buf bytes.Buffer
	buf.Grow(3 * len(compressed))
	n, err := io.Copy(&buf, io.LimitReader(r, MaxDecompressed+1))
	if err != nil {
		return nil, err
	}
	if n > MaxDecompressed {
		return nil, fmt.Errorf("editors: decompressed table exceeds %d bytes", MaxDecompressed)
	}
	return buf.Bytes()[:n:n], nil
}

// Deflate compresses data with raw deflate.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type xmlEditor struct {
	CacheID             string      `xml:"CacheID"`
	FriendlyName        string      `xml:"FriendlyName"`
	LoginName           string      `xml:"LoginName"`
	SIPAddress          string      `xml:"SIPAddress"`
	EmailAddress        string      `xml:"EmailAddress"`
	HasEditorPermission bool        `xml:"HasEditorPermission"`
	Timeout             int64       `xml:"Timeout"`
	Metadata            xmlMetadata `xml:"Metadata"`
}

type xmlMetadata struct {
	Items []xmlItem `xml:",any"`
}

type xmlItem struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xmlTable struct {
	XMLName xml.Name    `xml:"EditorsTable"`
	Editors []xmlEditor `xml:"Editor"`
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Parse reads Editor records from UTF-8 XML text. The records may sit under
// an EditorsTable root or form a bare fragment.
func Parse(text []byte) ([]Editor, error) {
	text = bytes.TrimPrefix(text, []byte("\xef\xbb\xbf"))
	dec := xml.NewDecoder(bytes.NewReader(text))
	out := []Editor{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Editor" {
			continue
		}
		var x xmlEditor
		if err := dec.DecodeElement(&x, &start); err != nil {
			return nil, err
		}
		ed, err := fromXML(x)
		if err != nil {
			return nil, err
		}
		out = append(out, ed)
	}
}

func fromXML(x xmlEditor) (Editor, error) {
	ed := Editor{
		CacheID:             strings.TrimSpace(x.CacheID),
		FriendlyName:        x.FriendlyName,
		LoginName:           x.LoginName,
		SIPAddress:          x.SIPAddress,
		EmailAddress:        x.EmailAddress,
		HasEditorPermission: x.HasEditorPermission,
		Timeout:             x.Timeout,
	}
	if len(x.Metadata.Items) > 0 {
		ed.Metadata = make(map[string]string, len(x.Metadata.Items))
	}
	for _, it := range x.Metadata.Items {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(it.Value))
		if err != nil {
			return Editor{}, fmt.Errorf("editors: metadata %q: %w", it.XMLName.Local, err)
		}
		val, err := utf16le.NewDecoder().Bytes(raw)
		if err != nil {
			return Editor{}, fmt.Errorf("editors: metadata %q: %w", it.XMLName.Local, err)
		}
		ed.Metadata[it.XMLName.Local] = string(val)
	}
	return ed, nil
}

// Marshal renders editors as an EditorsTable XML document. Metadata keys
// are written in sorted order.
func Marshal(editors []Editor) ([]byte, error) {
	t := xmlTable{Editors: make([]xmlEditor, 0, len(editors))}
	for _, ed := range editors {
		x := xmlEditor{
			CacheID:             ed.CacheID,
			FriendlyName:        ed.FriendlyName,
			LoginName:           ed.LoginName,
			SIPAddress:          ed.SIPAddress,
			EmailAddress:        ed.EmailAddress,
			HasEditorPermission: ed.HasEditorPermission,
			Timeout:             ed.Timeout,
		}
		keys := make([]string, 0, len(ed.Metadata))
		for k := range ed.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			raw, err := utf16le.NewEncoder().Bytes([]byte(ed.Metadata[k]))
			if err != nil {
				return nil, fmt.Errorf("editors: metadata %q: %w", k, err)
			}
			x.Metadata.Items = append(x.Metadata.Items, xmlItem{
				XMLName: xml.Name{Local: k},
				Value:   base64.StdEncoding.EncodeToString(raw),
			})
		}
		t.Editors = append(t.Editors, x)
	}
	return xml.Marshal(t)
}

// Objects returns the marker and compressed table objects for editors, in
// the order Extract expects.
func Objects(m *ident.Minter, editors []Editor) ([]element.Object, error) {
	text, err := Marshal(editors)
	if err != nil {
		return nil, err
	}
	compressed, err := Deflate(text)
	if err != nil {
		return nil, err
	}
	return []element.Object{
		{ID: m.ExGuid(), Data: append([]byte(nil), Magic[:]...)},
		{ID: m.ExGuid(), Data: compressed},
	}, nil
}
