package localfs

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bobg/flock"
	"github.com/pkg/errors"
)

// OS is the real, disk-backed FS implementation.
type OS struct {
	// Umask0 is the process umask captured at startup (umask is
	// process-global and racy to query on demand, so cmd/adbsync's main
	// reads it once at process start via localfs.ReadUmask and stores it
	// here).
	Umask0 os.FileMode

	flocker flock.Locker
}

// NewOS returns an OS filesystem carrying the given umask.
func NewOS(umask os.FileMode) *OS {
	return &OS{Umask0: umask}
}

func (o *OS) Lock(path string) error {
	return errors.Wrapf(o.flocker.Lock(path), "locking %s", path)
}

func (o *OS) Unlock(path string) error {
	return errors.Wrapf(o.flocker.Unlock(path), "unlocking %s", path)
}

func (o *OS) OpenRead(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}

func (o *OS) OpenCreateTrunc(path string, mode os.FileMode) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	return f, nil
}

func toInfo(fi os.FileInfo) Info {
	return Info{Name: fi.Name(), Mode: fi.Mode(), Size: fi.Size(), ModTime: fi.ModTime()}
}

func (o *OS) Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, errors.Wrapf(err, "statting %s", path)
	}
	return toInfo(fi), nil
}

func (o *OS) Lstat(path string) (Info, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Info{}, errors.Wrapf(err, "lstatting %s", path)
	}
	return toInfo(fi), nil
}

func (o *OS) Readlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading link %s", path)
	}
	return target, nil
}

func (o *OS) ReadDir(path string) ([]Info, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", path)
	}
	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		fi, err := os.Lstat(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "lstatting %s", e.Name())
		}
		infos = append(infos, toInfo(fi))
	}
	return infos, nil
}

func (o *OS) MkdirAll(path string, mode os.FileMode) error {
	return errors.Wrapf(os.MkdirAll(path, mode), "making directory %s", path)
}

func (o *OS) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", path)
	}
	return nil
}

func (o *OS) Rename(oldpath, newpath string) error {
	return errors.Wrapf(os.Rename(oldpath, newpath), "renaming %s to %s", oldpath, newpath)
}

func (o *OS) Chtimes(path string, mtime time.Time) error {
	return errors.Wrapf(os.Chtimes(path, mtime, mtime), "setting times on %s", path)
}

func (o *OS) Chmod(path string, mode os.FileMode) error {
	return errors.Wrapf(os.Chmod(path, mode), "chmod %s", path)
}

func (o *OS) Umask() os.FileMode {
	return o.Umask0
}
