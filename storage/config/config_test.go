package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/storage"
	"xdao.co/revstore/storage/registry"

	_ "xdao.co/revstore/storage/localfs"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestLoadFile_JSONAndYAMLAgree(t *testing.T) {
	want := Config{
		WritePolicy: "all",
		Backends: []BackendConfig{
			{Name: "localfs", ID: "cache", Config: map[string]string{"localfs-dir": "/tmp/a"}},
			{Name: "localfs", ID: "mirror", Config: map[string]string{"localfs-dir": "/tmp/b"}},
		},
	}

	j := writeFile(t, "store.json", `{"write_policy":"all","backends":[
		{"name":"localfs","id":"cache","config":{"localfs-dir":"/tmp/a"}},
		{"name":"localfs","id":"mirror","config":{"localfs-dir":"/tmp/b"}}]}`)
	y := writeFile(t, "store.yaml", `write_policy: all
backends:
  - name: localfs
    id: cache
    config:
      localfs-dir: /tmp/a
  - name: localfs
    id: mirror
    config:
      localfs-dir: /tmp/b
`)
	for _, p := range []string{j, y} {
		got, err := LoadFile(p)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", p, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("LoadFile(%s) mismatch (-want +got):\n%s", p, diff)
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []Config{
		{},
		{Backends: []BackendConfig{{}}},
		{Backends: []BackendConfig{{Name: "localfs"}, {Name: "localfs"}}},
		{WritePolicy: "some", Backends: []BackendConfig{{Name: "localfs"}}},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestOpen_ReplicatingAndPreferred(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	c := Config{
		WritePolicy: "all",
		Backends: []BackendConfig{
			{Name: "localfs", ID: "a", Config: map[string]string{"localfs-dir": a}},
			{Name: "localfs", ID: "b", Config: map[string]string{"localfs-dir": b}},
		},
	}
	s, closeFn, err := c.Open(registry.UsageCLI, "b")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	r, ok := s.(storage.Replicating)
	if !ok {
		t.Fatalf("write_policy=all must open a Replicating store, got %T", s)
	}
	if r.Backends[0].Name != "b" {
		t.Fatalf("preferred backend must come first, got %q", r.Backends[0].Name)
	}

	e := element.DataElement{ID: ident.NewMinter().ExGuid(), Payload: element.ObjectDataBlob{Data: []byte("x")}}
	if err := s.Put(e); err != nil {
		t.Fatalf("Put: %v", err)
	}
	for _, nb := range r.Backends {
		if !nb.Store.Has(e.ID) {
			t.Fatalf("backend %q missing element", nb.Name)
		}
	}

	if _, _, err := c.Open(registry.UsageCLI, "nope"); err == nil {
		t.Fatalf("unknown preferred backend must fail")
	}
}
