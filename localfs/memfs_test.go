package localfs

import (
	"io"
	"testing"
	"time"
)

func TestMemRoundtrip(t *testing.T) {
	m := NewMem()
	if err := m.MkdirAll("/a/b", 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := m.OpenCreateTrunc("/a/b/c.txt", 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := m.OpenRead("/a/b/c.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}

	info, err := m.Stat("/a/b/c.txt")
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 5 || !info.IsRegular() {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestMemReadDirSorted(t *testing.T) {
	m := NewMem()
	m.PutFile("/d/z.txt", 0o644, []byte("z"), time.Unix(1, 0))
	m.PutFile("/d/a.txt", 0o644, []byte("a"), time.Unix(2, 0))
	m.PutFile("/d/m.txt", 0o644, []byte("m"), time.Unix(3, 0))

	entries, err := m.ReadDir("/d")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"a.txt", "m.txt", "z.txt"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q (full: %v)", i, names[i], n, names)
		}
	}
}

func TestMemSymlink(t *testing.T) {
	m := NewMem()
	m.PutFile("/target.txt", 0o644, []byte("x"), time.Now())
	m.PutSymlink("/link.txt", "/target.txt")

	lst, err := m.Lstat("/link.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !lst.IsSymlink() {
		t.Error("expected Lstat to report a symlink")
	}

	st, err := m.Stat("/link.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsRegular() {
		t.Error("expected Stat to follow the link to a regular file")
	}

	target, err := m.Readlink("/link.txt")
	if err != nil {
		t.Fatal(err)
	}
	if target != "/target.txt" {
		t.Errorf("target = %q", target)
	}
}

func TestSweepRemovesOnlyUnkeptStaging(t *testing.T) {
	m := NewMem()
	m.PutFile("/d/a.txt"+StagingSuffix, 0o644, []byte("x"), time.Now())
	m.PutFile("/d/b.txt"+StagingSuffix, 0o644, []byte("y"), time.Now())
	m.PutFile("/d/c.txt", 0o644, []byte("z"), time.Now())

	removed, err := Sweep(m, "/d", KeepSet{"/d/b.txt" + StagingSuffix: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0] != "/d/a.txt"+StagingSuffix {
		t.Errorf("removed = %v", removed)
	}
	if _, err := m.Stat("/d/b.txt" + StagingSuffix); err != nil {
		t.Error("kept staging file should survive the sweep")
	}
	if _, err := m.Stat("/d/c.txt"); err != nil {
		t.Error("non-staging file should be untouched")
	}
	if _, err := m.Stat("/d/a.txt" + StagingSuffix); err == nil {
		t.Error("unkept staging file should be gone")
	}
}
