// Package tree implements recursive local and remote directory
// enumeration into CopyItem lists, and the skip-on-timestamp decision
// used by the "sync" verb.
package tree

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/localfs"
	"github.com/bobg/adbsync/session"
	"github.com/bobg/adbsync/wire"
)

// CopyItem is one file (or symlink) discovered by a walk, carrying
// enough metadata to drive a later send/recv without re-statting.
type CopyItem struct {
	Src   string
	Dst   string
	Mtime uint32
	Mode  uint32
	Size  uint64
	Skip  bool
}

// join concatenates dir and name with a single slash, regardless of
// whether dir already ends in one.
func join(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// WalkLocal recursively enumerates the local directory tree rooted at
// lpath, producing one CopyItem per regular file or symlink, with
// destinations rooted at rpath. Directories are descended into after
// their handle is closed, to bound the number of open file
// descriptors during a deep walk. Entries of any other type (FIFOs,
// sockets, device nodes) are reported to sink and skipped.
func WalkLocal(fs localfs.FS, lpath, rpath string, sink func(msg string)) ([]CopyItem, error) {
	var items []CopyItem
	type frame struct{ lpath, rpath string }
	stack := []frame{{lpath, rpath}}

	for len(stack) > 0 {
		f := stack[0]
		stack = stack[1:]

		entries, err := fs.ReadDir(strings.TrimSuffix(f.lpath, "/"))
		if err != nil {
			return nil, errors.Wrapf(err, "reading local directory %s", f.lpath)
		}
		for _, e := range entries {
			if e.Name == "." || e.Name == ".." {
				continue
			}
			src := join(f.lpath, e.Name)
			dst := join(f.rpath, e.Name)
			switch {
			case e.IsDir():
				stack = append(stack, frame{src + "/", dst + "/"})
			case e.IsRegular() || e.IsSymlink():
				items = append(items, CopyItem{
					Src:   src,
					Dst:   dst,
					Mtime: uint32(e.ModTime.Unix()),
					Mode:  uint32(e.Mode),
					Size:  uint64(e.Size),
				})
			default:
				if sink != nil {
					sink("skipping special file " + src)
				}
			}
		}
	}
	return items, nil
}

// WalkRemote recursively enumerates the remote directory tree rooted
// at rpath via LIST RPCs, the remote analog of WalkLocal.
func WalkRemote(s session.Session, rpath, lpath string) ([]CopyItem, error) {
	var items []CopyItem
	type frame struct{ rpath, lpath string }
	stack := []frame{{rpath, lpath}}

	for len(stack) > 0 {
		f := stack[0]
		stack = stack[1:]

		var dirs []frame
		err := s.List(strings.TrimSuffix(f.rpath, "/"), func(d session.DentEntry) error {
			if d.Name == "." || d.Name == ".." {
				return nil
			}
			src := join(f.rpath, d.Name)
			dst := join(f.lpath, d.Name)
			switch {
			case wire.IsDir(d.Mode):
				dirs = append(dirs, frame{src + "/", dst + "/"})
			case wire.IsRegular(d.Mode) || wire.IsSymlink(d.Mode):
				items = append(items, CopyItem{Src: src, Dst: dst, Mtime: d.Time, Mode: d.Mode, Size: uint64(d.Size)})
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "listing remote directory %s", f.rpath)
		}
		stack = append(stack, dirs...)
	}
	return items, nil
}
