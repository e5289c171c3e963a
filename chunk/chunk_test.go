package chunk

import (
	"bytes"
	"testing"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

type mapSource struct {
	objects map[ident.ExGuid]element.Object
	blobs   map[ident.ExGuid][]byte
}

func newMapSource(objs []element.Object) *mapSource {
	s := &mapSource{objects: make(map[ident.ExGuid]element.Object), blobs: make(map[ident.ExGuid][]byte)}
	for _, o := range objs {
		s.objects[o.ID] = o
	}
	return s
}

func (s *mapSource) Object(id ident.ExGuid) (element.Object, bool) {
	o, ok := s.objects[id]
	return o, ok
}

func (s *mapSource) Blob(id ident.ExGuid) ([]byte, bool) {
	b, ok := s.blobs[id]
	return b, ok
}

func TestFixedSize_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 25)
	for _, size := range []int{1, 7, 10, 250, 4096} {
		m := ident.NewMinter()
		root := FixedSize{Size: size}.Chunk(data, m)
		if root.Size() != uint64(len(data)) {
			t.Fatalf("size=%d: root.Size=%d", size, root.Size())
		}
		objs := Objects(root)
		back, err := Tree(newMapSource(objs), root.ID)
		if err != nil {
			t.Fatalf("size=%d: Tree: %v", size, err)
		}
		if !bytes.Equal(Join(back), data) {
			t.Fatalf("size=%d: round trip mismatch", size)
		}
	}
}

func TestFixedSize_Empty(t *testing.T) {
	root := FixedSize{}.Chunk(nil, ident.NewMinter())
	if root.Kind != Intermediate || len(root.Children) != 0 {
		t.Fatalf("empty content must yield a bare root")
	}
	back, err := Tree(newMapSource(Objects(root)), root.ID)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(Join(back)) != 0 {
		t.Fatalf("expected empty content")
	}
}

func TestTree_MissingNodeIsIncomplete(t *testing.T) {
	root := FixedSize{Size: 2}.Chunk([]byte("abcdef"), ident.NewMinter())
	objs := Objects(root)
	src := newMapSource(objs)
	delete(src.objects, root.Children[1].ID)

	_, err := Tree(src, root.ID)
	if !element.IsKind(err, element.IncompleteSnapshot) {
		t.Fatalf("got %v want IncompleteSnapshot", err)
	}
}

func TestTree_CycleIsMalformed(t *testing.T) {
	m := ident.NewMinter()
	a, b := m.ExGuid(), m.ExGuid()
	src := newMapSource([]element.Object{
		{ID: a, Data: []byte{byte(Intermediate), 0}, References: []ident.ExGuid{b}},
		{ID: b, Data: []byte{byte(Intermediate), 0}, References: []ident.ExGuid{a}},
	})
	_, err := Tree(src, a)
	if !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("got %v want MalformedOrWrongSchema", err)
	}
}

func TestTree_SizeMismatchIsMalformed(t *testing.T) {
	root := FixedSize{Size: 4}.Chunk([]byte("abcdefgh"), ident.NewMinter())
	objs := Objects(root)
	objs[0].Data = []byte{byte(Intermediate), 3}

	_, err := Tree(newMapSource(objs), root.ID)
	if !element.IsKind(err, element.MalformedOrWrongSchema) {
		t.Fatalf("got %v want MalformedOrWrongSchema", err)
	}
}

func TestTree_BlobLeaf(t *testing.T) {
	m := ident.NewMinter()
	leaf, blob, root := m.ExGuid(), m.ExGuid(), m.ExGuid()
	src := newMapSource([]element.Object{
		{ID: root, Data: []byte{byte(Intermediate), 5}, References: []ident.ExGuid{leaf}},
		{ID: leaf, Data: []byte{byte(Leaf)}, Blob: blob},
	})

	if _, err := Tree(src, root); !element.IsKind(err, element.IncompleteSnapshot) {
		t.Fatalf("missing blob: got %v want IncompleteSnapshot", err)
	}

	src.blobs[blob] = []byte("hello")
	n, err := Tree(src, root)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if string(Join(n)) != "hello" {
		t.Fatalf("got %q", Join(n))
	}
}
