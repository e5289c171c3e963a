package editors

import (
	"encoding/base64"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/unicode"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

func utf16Base64(t *testing.T, s string) string {
	t.Helper()
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode utf16: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func editorsXML(t *testing.T) string {
	return "<EditorsTable>" +
		"<Editor>" +
		"<CacheID>c1</CacheID>" +
		"<FriendlyName>Ada</FriendlyName>" +
		"<LoginName>ada@example.org</LoginName>" +
		"<SIPAddress></SIPAddress>" +
		"<EmailAddress>ada@example.org</EmailAddress>" +
		"<HasEditorPermission>true</HasEditorPermission>" +
		"<Timeout>3600</Timeout>" +
		"<Metadata><App>" + utf16Base64(t, "writer") + "</App><Note>" + utf16Base64(t, "hé") + "</Note></Metadata>" +
		"</Editor>" +
		"<Editor>" +
		"<CacheID>c2</CacheID>" +
		"<HasEditorPermission>false</HasEditorPermission>" +
		"<Timeout>-1</Timeout>" +
		"<Metadata></Metadata>" +
		"</Editor>" +
		"</EditorsTable>"
}

func packageWithGroup(t *testing.T, objs []element.Object) *element.Package {
	t.Helper()
	m := ident.NewMinter()
	return element.MustPackage(
		element.DataElement{ID: m.ExGuid(), Payload: element.ObjectGroup{Objects: []element.Object{{ID: m.ExGuid(), Data: []byte("unrelated")}}}},
		element.DataElement{ID: m.ExGuid(), Payload: element.ObjectGroup{Objects: objs}},
	)
}

func TestExtract_MatchesDirectParse(t *testing.T) {
	text := []byte(editorsXML(t))
	want, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(want) != 2 || want[0].Metadata["Note"] != "hé" || !want[0].HasEditorPermission || want[1].Timeout != -1 {
		t.Fatalf("unexpected parse: %+v", want)
	}

	compressed, err := Deflate(text)
	if err != nil {
		t.Fatalf("Deflate: %v", err)
	}
	m := ident.NewMinter()
	pkg := packageWithGroup(t, []element.Object{
		{ID: m.ExGuid(), Data: []byte("leading")},
		{ID: m.ExGuid(), Data: Magic[:]},
		{ID: m.ExGuid(), Data: compressed},
	})

	got, err := Extract(pkg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_NotFound(t *testing.T) {
	m := ident.NewMinter()
	pkg := packageWithGroup(t, []element.Object{
		{ID: m.ExGuid(), Data: []byte{0x1A, 0x5A, 0x3A, 0x30, 0x00, 0x00, 0x00}},
		{ID: m.ExGuid(), Data: []byte("payload")},
	})
	_, err := Extract(pkg)
	if !IsNotFound(err) {
		t.Fatalf("got %v want SubFormatNotFound", err)
	}
}

func TestExtract_MarkerWithoutPayload(t *testing.T) {
	m := ident.NewMinter()
	pkg := packageWithGroup(t, []element.Object{{ID: m.ExGuid(), Data: Magic[:]}})
	_, err := Extract(pkg)
	if !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("got %v want MalformedOrWrongSchema", err)
	}
}

func TestExtract_CorruptPayload(t *testing.T) {
	m := ident.NewMinter()
	pkg := packageWithGroup(t, []element.Object{
		{ID: m.ExGuid(), Data: Magic[:]},
		{ID: m.ExGuid(), Data: []byte{0xff, 0xff, 0xff}},
	})
	_, err := Extract(pkg)
	if !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("got %v want MalformedOrWrongSchema", err)
	}
}

func TestObjects_RoundTrip(t *testing.T) {
	want := []Editor{
		{CacheID: "a", FriendlyName: "A", HasEditorPermission: true, Timeout: 60, Metadata: map[string]string{"k": "v", "emoji": "✓"}},
		{CacheID: "b", Timeout: 1},
	}
	objs, err := Objects(ident.NewMinter(), want)
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	got, err := Extract(packageWithGroup(t, objs))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Fragment(t *testing.T) {
	got, err := Parse([]byte("\xef\xbb\xbf<Editor><CacheID> x </CacheID><Timeout>5</Timeout></Editor>"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].CacheID != "x" || got[0].Timeout != 5 {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestInflate_TrimsToProducedLength(t *testing.T) {
	in := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	c, err := Deflate(in)
	if err != nil {
		t.Fatalf("Deflate: %v", err)
	}
	out, err := Inflate(c)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if string(out) != string(in) || cap(out) != len(out) {
		t.Fatalf("len=%d cap=%d", len(out), cap(out))
	}
}
