// Package engine orchestrates the push, pull, sync, and list
// operations on top of a session.Session, a localfs.FS, and a
// progress.Sink.
package engine

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bobg/adbsync/localfs"
	"github.com/bobg/adbsync/session"
)

// basename returns the last path component of p, tolerating a
// trailing slash.
func basename(p string) string {
	return path.Base(strings.TrimSuffix(p, "/"))
}

// summaryLine formats the standard "N <verb> / M skipped / rate" line
// shared by push, pull, and sync ("pushed" or "pulled").
func summaryLine(root, verb string, done, skipped int, s session.Session) string {
	rate, _, elapsed := s.TransferRate()
	return plural(root, verb, done, skipped) + " " + rateText(rate, elapsed)
}

func plural(root, verb string, done, skipped int) string {
	df, sf := "file", "file"
	if done != 1 {
		df = "files"
	}
	if skipped != 1 {
		sf = "files"
	}
	return root + ": " + strconv.Itoa(done) + " " + df + " " + verb + ". " + strconv.Itoa(skipped) + " " + sf + " skipped."
}

func rateText(rateMBps float64, elapsed time.Duration) string {
	return strconv.FormatFloat(rateMBps, 'f', 1, 64) + " MB/s (" + elapsed.Round(time.Millisecond).String() + ")"
}

// localKind classifies a local path's stat result the way the
// design's tagged-variant note calls for: decided once, at the stat
// site, instead of re-testing mode bits at every call site.
type localKind int

const (
	kindOther localKind = iota
	kindRegular
	kindSymlink
	kindDir
)

func classify(info localfs.Info) localKind {
	switch {
	case info.IsDir():
		return kindDir
	case info.IsSymlink():
		return kindSymlink
	case info.IsRegular():
		return kindRegular
	default:
		return kindOther
	}
}
