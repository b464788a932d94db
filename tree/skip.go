package tree

import (
	"os"

	"github.com/bobg/adbsync/session"
)

// ComputeSkips implements the sync verb's skip-on-timestamp decision
// (property P5), using the mandatory pipelined STAT phase (property
// P6): every destination's STAT request is written before any
// response is read, and the N-th response is matched to the N-th
// item — naive request-per-roundtrip would destroy throughput over a
// high-latency link.
//
// A regular-file item is skipped when the remote size matches and the
// remote mtime equals the local mtime. A symlink item is skipped when
// the remote size matches and the remote mtime is at or after the
// local mtime (the remote end may have recreated the link slightly
// later without the content having changed).
func ComputeSkips(s session.Session, items []CopyItem) error {
	dsts := make([]string, len(items))
	for i, it := range items {
		dsts[i] = it.Dst
	}
	results, err := s.StatPipeline(dsts)
	if err != nil {
		return err
	}
	for i := range items {
		r := results[i]
		it := &items[i]
		if r.Mode == 0 || uint64(r.Size) != it.Size {
			continue
		}
		isSymlink := os.FileMode(it.Mode)&os.ModeSymlink != 0
		switch {
		case isSymlink:
			it.Skip = r.Time >= it.Mtime
		case os.FileMode(it.Mode).IsRegular():
			it.Skip = r.Time == it.Mtime
		}
	}
	return nil
}
