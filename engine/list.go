package engine

import (
	"context"
	"fmt"

	"github.com/bobg/adbsync/progress"
	"github.com/bobg/adbsync/session"
	"github.com/bobg/adbsync/tree"
)

// List implements do_sync_ls: print one line per DENT entry of path
// in the format "mode(hex8) size(hex8) time(hex8) name".
func List(s session.Session, sink progress.Sink, path string) error {
	return s.List(path, func(d session.DentEntry) error {
		sink.PrintFull(fmt.Sprintf("%08x %08x %08x %s", d.Mode, d.Size, d.Time, d.Name))
		return nil
	})
}

// ListRecursive walks path and every remote subdirectory beneath it,
// printing one line per discovered file or symlink as soon as it's
// found rather than waiting for the whole tree to be enumerated. It
// consumes tree.WalkRemoteStream's channel directly instead of
// WalkRemote's materialized slice, since "du"/"find"-style output over
// a very large remote tree is exactly the case that streaming exists
// for. The consumer here only ever calls sink.PrintFull, never s again,
// so it never races the walk's own producer goroutine for the session.
func ListRecursive(ctx context.Context, s session.Session, sink progress.Sink, path string) error {
	ch, wait, err := tree.WalkRemoteStream(ctx, s, path, path)
	if err != nil {
		return err
	}
	for item := range ch {
		sink.PrintFull(fmt.Sprintf("%08x %08x %08x %s", item.Mode, item.Size, item.Mtime, item.Src))
	}
	return wait()
}
