package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "adbsync.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, `{"transport":{"kind":"tcp","addr":"localhost:5037"},"max_chunk":65536}`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Transport["kind"] != "tcp" {
		t.Errorf("transport.kind = %v", c.Transport["kind"])
	}
	if c.MaxChunk != 65536 {
		t.Errorf("max_chunk = %d", c.MaxChunk)
	}
}

func TestVersionStableUnderKeyOrder(t *testing.T) {
	a := &Config{Transport: map[string]interface{}{"kind": "tcp", "addr": "x"}}
	b := &Config{Transport: map[string]interface{}{"addr": "x", "kind": "tcp"}}

	va, err := a.Version()
	if err != nil {
		t.Fatal(err)
	}
	vb, err := b.Version()
	if err != nil {
		t.Fatal(err)
	}
	if va != vb {
		t.Errorf("version differs by map key order: %s vs %s", va, vb)
	}
}

func TestVersionChangesWithContent(t *testing.T) {
	a := &Config{MaxChunk: 1}
	b := &Config{MaxChunk: 2}

	va, _ := a.Version()
	vb, _ := b.Version()
	if va == vb {
		t.Error("expected different versions for different configs")
	}
}
