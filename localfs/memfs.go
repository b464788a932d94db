package localfs

import (
	"bytes"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// node is one entry of a Mem filesystem: either a regular file (Data
// non-nil), a symlink (Link non-empty), or a directory (neither set,
// membership tracked implicitly by path prefix).
type node struct {
	mode    os.FileMode
	data    []byte
	link    string
	modTime time.Time
}

// Mem is an in-memory FS, for tests that exercise tree walking and the
// push/pull engines without touching disk. It mirrors the mutex+map
// shape of a simple in-memory store: every method takes the lock,
// mutates or reads a plain map, and returns.
type Mem struct {
	mu    sync.Mutex
	nodes map[string]*node
	umask os.FileMode
}

// NewMem returns an empty in-memory filesystem.
func NewMem() *Mem {
	return &Mem{nodes: map[string]*node{"/": {mode: os.ModeDir | 0o755}}, umask: 0o022}
}

func clean(p string) string {
	return path.Clean("/" + p)
}

func (m *Mem) Umask() os.FileMode { return m.umask }

// Lock and Unlock are no-ops: tests drive Mem from a single goroutine,
// so there is no concurrent writer to serialize against.
func (m *Mem) Lock(string) error   { return nil }
func (m *Mem) Unlock(string) error { return nil }

// SetUmask lets a test fix the umask the fake reports.
func (m *Mem) SetUmask(mask os.FileMode) { m.umask = mask }

func (m *Mem) OpenRead(p string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[clean(p)]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "open %s", p)
	}
	return io.NopCloser(bytes.NewReader(n.data)), nil
}

// memWriter buffers writes and installs the node only on Close, which
// matches the real OS's create+write+close sequencing.
type memWriter struct {
	m    *Mem
	path string
	mode os.FileMode
	buf  bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.nodes[w.path] = &node{mode: w.mode, data: append([]byte(nil), w.buf.Bytes()...), modTime: time.Now()}
	return nil
}

func (m *Mem) OpenCreateTrunc(p string, mode os.FileMode) (io.WriteCloser, error) {
	return &memWriter{m: m, path: clean(p), mode: mode}, nil
}

func (m *Mem) statLocked(p string, followLink bool) (Info, error) {
	cp := clean(p)
	n, ok := m.nodes[cp]
	if !ok {
		return Info{}, errors.Wrapf(os.ErrNotExist, "stat %s", p)
	}
	if followLink && n.mode&os.ModeSymlink != 0 {
		return m.statLocked(n.link, true)
	}
	return Info{Name: path.Base(cp), Mode: n.mode, Size: int64(len(n.data)), ModTime: n.modTime}, nil
}

func (m *Mem) Stat(p string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statLocked(p, true)
}

func (m *Mem) Lstat(p string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statLocked(p, false)
}

func (m *Mem) Readlink(p string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[clean(p)]
	if !ok || n.mode&os.ModeSymlink == 0 {
		return "", errors.Errorf("%s is not a symlink", p)
	}
	return n.link, nil
}

// ReadDir lists immediate children of p, sorted by name, mirroring the
// sort.Search-friendly ordering a real directory listing is put
// through before diffing.
func (m *Mem) ReadDir(p string) ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir := clean(p)
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	seen := map[string]bool{}
	var names []string
	for k := range m.nodes {
		if k == dir || !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		name := strings.SplitN(rest, "/", 2)[0]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		info, err := m.statLocked(path.Join(dir, name), false)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (m *Mem) MkdirAll(p string, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clean(p)
	parts := strings.Split(strings.Trim(cp, "/"), "/")
	cur := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		cur += "/" + part
		if _, ok := m.nodes[cur]; !ok {
			m.nodes[cur] = &node{mode: os.ModeDir | mode, modTime: time.Now()}
		}
	}
	return nil
}

func (m *Mem) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, clean(p))
	return nil
}

func (m *Mem) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clean(oldpath)
	n, ok := m.nodes[cp]
	if !ok {
		return errors.Wrapf(os.ErrNotExist, "rename %s", oldpath)
	}
	delete(m.nodes, cp)
	m.nodes[clean(newpath)] = n
	return nil
}

func (m *Mem) Chtimes(p string, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[clean(p)]
	if !ok {
		return errors.Wrapf(os.ErrNotExist, "chtimes %s", p)
	}
	n.modTime = mtime
	return nil
}

func (m *Mem) Chmod(p string, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[clean(p)]
	if !ok {
		return errors.Wrapf(os.ErrNotExist, "chmod %s", p)
	}
	n.mode = n.mode&os.ModeType | mode
	return nil
}

// PutFile is a test helper installing a regular file directly, parent
// directories included, bypassing OpenCreateTrunc's Close-to-commit
// semantics.
func (m *Mem) PutFile(p string, mode os.FileMode, data []byte, mtime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clean(p)
	for dir := path.Dir(cp); dir != "/"; dir = path.Dir(dir) {
		if _, ok := m.nodes[dir]; !ok {
			m.nodes[dir] = &node{mode: os.ModeDir | 0o755, modTime: mtime}
		}
	}
	m.nodes[cp] = &node{mode: mode, data: data, modTime: mtime}
}

// PutSymlink is a test helper installing a symlink node directly.
func (m *Mem) PutSymlink(p, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[clean(p)] = &node{mode: os.ModeSymlink | 0o777, link: target, modTime: time.Now()}
}
