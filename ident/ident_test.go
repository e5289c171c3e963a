package ident

import "testing"

func TestExGuid_StructuralEquality(t *testing.T) {
	g := MustGuid("6f2a4665-42c8-46c7-bab4-e28fdce1e32b")
	a := NewExGuid(7, g)
	b, err := ParseExGuid(a.String())
	if err != nil {
		t.Fatalf("ParseExGuid: %v", err)
	}
	if a != b || !a.Equal(b) {
		t.Fatalf("expected equal: %s vs %s", a, b)
	}

	m := map[ExGuid]int{a: 1}
	if m[b] != 1 {
		t.Fatalf("independently parsed value must hit the same map key")
	}
	if a.Equal(NewExGuid(8, g)) {
		t.Fatalf("different serial must not be equal")
	}
}

func TestExGuid_Null(t *testing.T) {
	if !NullExGuid.IsNull() {
		t.Fatalf("NullExGuid must be null")
	}
	if NewExGuid(0, NewGuid()).IsNull() {
		t.Fatalf("non-zero guid must not be null")
	}
	if NewExGuid(1, NilGuid).IsNull() {
		t.Fatalf("non-zero serial must not be null")
	}
}

func TestExGuid_TextRoundTrip(t *testing.T) {
	want := NewExGuid(42, NewGuid())
	b, err := want.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var got ExGuid
	if err := got.UnmarshalText(b); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestParseExGuid_Invalid(t *testing.T) {
	for _, s := range []string{"", "nope", "{not-a-guid},1", "{6f2a4665-42c8-46c7-bab4-e28fdce1e32b},x"} {
		if _, err := ParseExGuid(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCellId_ParseRoundTrip(t *testing.T) {
	got, err := ParseCellId(MainCell.String())
	if err != nil {
		t.Fatalf("ParseCellId: %v", err)
	}
	if !got.Equal(MainCell) {
		t.Fatalf("got %s want %s", got, MainCell)
	}
	if MainCell.IsNull() {
		t.Fatalf("MainCell must not be null")
	}
}

func TestWellKnownConstants(t *testing.T) {
	if FileContentSchema.String() != "0eb93394-571d-41e9-aad3-880d92d31955" {
		t.Fatalf("schema guid drifted: %s", FileContentSchema)
	}
	if StorageRootRole.Serial != 2 || MainCell.First.Serial != 1 || MainCell.Second.Serial != 1 {
		t.Fatalf("well-known serials drifted")
	}
	if StorageRootRole.ID != MainCell.First.ID {
		t.Fatalf("storage root role and main cell must share a guid")
	}
}

func TestSerialNumber_Newer(t *testing.T) {
	g := NewGuid()
	older := SerialNumber{InstanceID: g, Sequence: 3}
	newer := SerialNumber{InstanceID: g, Sequence: 4}
	if !newer.Newer(older) || older.Newer(newer) {
		t.Fatalf("unexpected ordering")
	}
	other := SerialNumber{InstanceID: NewGuid(), Sequence: 100}
	if other.Newer(older) {
		t.Fatalf("serials of different instances must not compare")
	}
}
