package tree

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/adbsync/session"
	"github.com/bobg/adbsync/wire"
)

// WalkRemoteStream is WalkRemote's streaming counterpart: for a very
// large remote tree, callers don't want to wait for the whole
// directory-frame stack to drain before processing the first item.
// The walk runs in its own goroutine (so the directory-by-directory
// LIST calls can proceed, each one still a sequential request on s,
// which stays single-threaded per session) while the returned channel
// lets the caller consume CopyItems as they're produced. This is the
// producer/wait-function shape file.Store.ListRefs/ListAnchors use
// over errgroup.Group, adapted here from "stream blob refs out of a
// store" to "stream CopyItems out of a remote tree walk."
func WalkRemoteStream(ctx context.Context, s session.Session, rpath, lpath string) (<-chan CopyItem, func() error, error) {
	ch := make(chan CopyItem)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(ch)

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
					item := CopyItem{Src: src, Dst: dst, Mtime: d.Time, Mode: d.Mode, Size: uint64(d.Size)}
					select {
					case ch <- item:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "listing remote directory %s", f.rpath)
			}
			stack = append(stack, dirs...)

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		return nil
	})

	return ch, g.Wait, nil
}
