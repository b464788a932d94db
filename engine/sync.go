package engine

import (
	"os"
	"time"

	"github.com/bobg/adbsync/localfs"
	"github.com/bobg/adbsync/progress"
	"github.com/bobg/adbsync/tree"
)

// Sync implements do_sync_sync: push lpath to rpath with the
// skip-on-timestamp decision (§4.E), or, when listOnly is set, print
// what would be pushed instead of transferring anything.
func (e *PushEngine) Sync(lpath, rpath string, listOnly bool) error {
	items, err := tree.WalkLocal(e.FS, lpath, rpath, func(msg string) { e.Sink.PrintFull(msg) })
	if err != nil {
		return err
	}
	if err := tree.ComputeSkips(e.S, items); err != nil {
		return err
	}

	var pushed, skipped int
	for _, it := range items {
		if it.Skip {
			skipped++
			continue
		}
		if listOnly {
			e.Sink.PrintFull("would push: " + it.Src + " -> " + it.Dst)
			pushed++
			continue
		}
		info := localfs.Info{Mode: os.FileMode(it.Mode), Size: int64(it.Size), ModTime: time.Unix(int64(it.Mtime), 0)}
		if err := e.pushOne(it.Src, it.Dst, info); err != nil {
			progress.Error(e.Sink, "failed to copy '%s' to '%s': %s", it.Src, it.Dst, err)
			continue
		}
		pushed++
	}

	if !listOnly {
		e.Sink.PrintFull(summaryLine(rpath, "pushed", pushed, skipped, e.S))
	}
	return nil
}
