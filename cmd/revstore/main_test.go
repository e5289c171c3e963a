package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"xdao.co/revstore/model"
)

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	if code := run(args, &out, &errOut); code != 0 {
		t.Fatalf("revstore %s: exit %d\n%s", strings.Join(args, " "), code, errOut.String())
	}
	return out.String()
}

func TestCLI_EncodeDecodeInspect(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	pkg := filepath.Join(dir, "in.pkg")
	content := bytes.Repeat([]byte("revision store "), 40)
	if err := os.WriteFile(in, content, 0o644); err != nil {
		t.Fatal(err)
	}

	index := strings.TrimSpace(runOK(t, "encode", "--out", pkg, "--chunk-size", "64", "--group-limit", "3", "--blob-threshold", "32", in))

	got := runOK(t, "decode", "--index", index, "--mode", "strict", pkg)
	if got != string(content) {
		t.Fatalf("decode mismatch: got %d bytes want %d", len(got), len(content))
	}

	var rep model.Inspection
	if err := json.Unmarshal([]byte(runOK(t, "inspect", "--index", index, pkg)), &rep); err != nil {
		t.Fatalf("inspect output: %v", err)
	}
	if !rep.Complete || !rep.ExpectedSchema || len(rep.Cells) != 1 {
		t.Fatalf("inspect: %+v", rep)
	}

	if got := strings.TrimSpace(runOK(t, "editors", pkg)); got != "[]" {
		t.Fatalf("editors: got %q want []", got)
	}
}

func TestCLI_EditorsTable(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	xmlPath := filepath.Join(dir, "editors.xml")
	pkg := filepath.Join(dir, "in.pkg")
	if err := os.WriteFile(in, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}
	const table = `<EditorsTable><Editor><CacheID>c1</CacheID><FriendlyName>Ada</FriendlyName>` +
		`<LoginName>ada</LoginName><HasEditorPermission>true</HasEditorPermission><Timeout>60</Timeout></Editor></EditorsTable>`
	if err := os.WriteFile(xmlPath, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	runOK(t, "encode", "--out", pkg, "--editors", xmlPath, in)

	var eds []model.Editor
	if err := json.Unmarshal([]byte(runOK(t, "editors", pkg)), &eds); err != nil {
		t.Fatalf("editors output: %v", err)
	}
	if len(eds) != 1 || eds[0].FriendlyName != "Ada" || !eds[0].HasEditorPermission || eds[0].Timeout != 60 {
		t.Fatalf("editors: %+v", eds)
	}
}

func TestCLI_BundleAndStore(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	pkg := filepath.Join(dir, "in.pkg")
	tarPath := filepath.Join(dir, "in.tar")
	imported := filepath.Join(dir, "imported.pkg")
	fetched := filepath.Join(dir, "fetched.pkg")
	storeDir := filepath.Join(dir, "store")
	if err := os.WriteFile(in, []byte("bundle and store"), 0o644); err != nil {
		t.Fatal(err)
	}

	index := strings.TrimSpace(runOK(t, "encode", "--out", pkg, "--chunk-size", "4", in))

	runOK(t, "bundle", "export", "--index", index, "--out", tarPath, pkg)
	if got := strings.TrimSpace(runOK(t, "bundle", "import", "--out", imported, tarPath)); got != index {
		t.Fatalf("bundle import index: got %s want %s", got, index)
	}

	runOK(t, "store", "put", "--backend", "localfs", "--localfs-dir", storeDir, imported)
	runOK(t, "store", "get", "--backend", "localfs", "--localfs-dir", storeDir, "--index", index, "--out", fetched)

	if got := runOK(t, "decode", "--index", index, fetched); got != "bundle and store" {
		t.Fatalf("decode after store round trip: got %q", got)
	}
}

func TestCLI_Errors(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 2 {
		t.Fatalf("no args: exit %d want 2", code)
	}
	if code := run([]string{"bogus"}, &out, &errOut); code != 2 {
		t.Fatalf("unknown command: exit %d want 2", code)
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	pkg := filepath.Join(dir, "in.pkg")
	if err := os.WriteFile(in, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	runOK(t, "encode", "--out", pkg, in)

	errOut.Reset()
	code := run([]string{"decode", "--index", "{00000000-0000-0000-0000-000000000001},1", pkg}, &out, &errOut)
	if code != 1 || !strings.Contains(errOut.String(), string(model.ErrReferenceNotFound)) {
		t.Fatalf("decode unknown index: exit %d, stderr %q", code, errOut.String())
	}
}
