package engine

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/adbsyncerr"
	"github.com/bobg/adbsync/localfs"
	"github.com/bobg/adbsync/progress"
	"github.com/bobg/adbsync/session"
	"github.com/bobg/adbsync/tree"
	"github.com/bobg/adbsync/wire"
)

// PushEngine drives the push verb (§4.E).
type PushEngine struct {
	S        session.Session
	FS       localfs.FS
	Sink     progress.Sink
	MaxChunk int

	// Verify, when set, fingerprints each pushed regular file's local
	// content after a successful transfer and prints the digest, as a
	// local-only "-verify" check (no wire-protocol change, no remote
	// fingerprint to compare against — see Fingerprint).
	Verify bool
}

// NewPush constructs a PushEngine with the protocol's default chunk
// size.
func NewPush(s session.Session, fs localfs.FS, sink progress.Sink) *PushEngine {
	return &PushEngine{S: s, FS: fs, Sink: sink, MaxChunk: wire.DefaultMaxChunk}
}

// Push implements do_sync_push: push every path in srcs to dst.
func (e *PushEngine) Push(srcs []string, dst string) error {
	return e.push(srcs, dst, false)
}

// push implements Push. With skipOnTimestamp set, directory sources
// go through the skip-on-timestamp phase; Sync walks and skips on its
// own and does not call push.
func (e *PushEngine) push(srcs []string, dst string, skipOnTimestamp bool) error {
	mode, _, _, err := e.S.Stat(dst)
	if err != nil {
		return err
	}
	destIsDir := mode != 0 && wire.IsDir(mode)
	destMissing := mode == 0

	if destMissing && (len(srcs) > 1 || hasTrailingSlash(dst)) {
		return errors.Errorf("remote destination %s does not exist", dst)
	}

	var pushed, skipped int
	var lastErr error
	for _, src := range srcs {
		info, err := e.FS.Lstat(src)
		if err != nil {
			progress.Error(e.Sink, "%s: %s", src, err)
			lastErr = err
			continue
		}
		if classify(info) == kindDir {
			dstDir := dst
			if destIsDir {
				dstDir = join(dst, basename(src))
			}
			p, s, err := e.pushDir(src, dstDir, skipOnTimestamp)
			pushed += p
			skipped += s
			if err != nil {
				lastErr = err
			}
			continue
		}
		dstPath := dst
		if destIsDir {
			dstPath = join(dst, basename(src))
		}
		if err := e.pushOne(src, dstPath, info); err != nil {
			progress.Error(e.Sink, "failed to copy '%s' to '%s': %s", src, dstPath, err)
			lastErr = err
			continue
		}
		pushed++
	}

	e.Sink.PrintFull(summaryLine(dst, "pushed", pushed, skipped, e.S))
	return lastErr
}

func join(dir, name string) string {
	if hasTrailingSlash(dir) {
		return dir + name
	}
	return dir + "/" + name
}

func hasTrailingSlash(p string) bool {
	return len(p) > 0 && p[len(p)-1] == '/'
}

// pushDir walks src recursively and pushes every discovered item to
// destinations rooted at dst. If skipOnTimestamp is set, the
// skip-on-timestamp phase (§4.E) runs first.
func (e *PushEngine) pushDir(src, dst string, skipOnTimestamp bool) (pushed, skipped int, err error) {
	items, err := tree.WalkLocal(e.FS, src, dst, func(msg string) { e.Sink.PrintFull(msg) })
	if err != nil {
		return 0, 0, err
	}
	if skipOnTimestamp {
		if err := tree.ComputeSkips(e.S, items); err != nil {
			return 0, 0, err
		}
	}
	for _, it := range items {
		if it.Skip {
			skipped++
			continue
		}
		info := localfs.Info{Mode: os.FileMode(it.Mode), Size: int64(it.Size), ModTime: time.Unix(int64(it.Mtime), 0)}
		if err := e.pushOne(it.Src, it.Dst, info); err != nil {
			progress.Error(e.Sink, "failed to copy '%s' to '%s': %s", it.Src, it.Dst, err)
			continue
		}
		pushed++
	}
	return pushed, skipped, nil
}

// pushOne pushes a single regular file or symlink and reads its copy
// acknowledgment.
func (e *PushEngine) pushOne(src, dst string, info localfs.Info) error {
	kind := classify(info)
	mtime := uint32(info.ModTime.Unix())
	// The wire carries a Unix st_mode, whose file-type bits differ from
	// os.FileMode's.
	mode := uint32(info.Mode.Perm())
	switch kind {
	case kindRegular:
		mode |= 0o100000
	case kindSymlink:
		mode |= 0o120000
	}

	var data []byte
	var size int64
	var r io.ReadCloser
	var err error

	switch kind {
	case kindSymlink:
		target, err := e.FS.Readlink(src)
		if err != nil {
			return err
		}
		data = []byte(target)
		size = int64(len(data))
	case kindRegular:
		size = info.Size
		if size >= int64(e.MaxChunk) {
			r, err = e.FS.OpenRead(src)
			if err != nil {
				return err
			}
			defer r.Close()
		} else {
			rc, err := e.FS.OpenRead(src)
			if err != nil {
				return err
			}
			data, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return err
			}
		}
	default:
		return errors.Wrapf(adbsyncerr.ErrUnsupportedLocalMode, "%s", src)
	}

	if r != nil {
		e.Sink.PrintElide(src + "...")
		if err := e.S.SendLarge(dst, mode, r, size, mtime, func(copied, total int64) {
			e.Sink.PrintElide(src + ": " + progressFraction(copied, total))
		}); err != nil {
			return err
		}
	} else {
		if err := e.S.SendSmall(dst, mode, data, mtime); err != nil {
			return err
		}
	}
	if err := e.S.ReadCopyAck(); err != nil {
		return err
	}
	if e.Verify && kind == kindRegular {
		if err := e.printFingerprint(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// printFingerprint re-reads src (already transferred to dst) and logs
// its hashsplit content digest, for the optional "-verify" check.
func (e *PushEngine) printFingerprint(src, dst string) error {
	rc, err := e.FS.OpenRead(src)
	if err != nil {
		return err
	}
	defer rc.Close()
	fp, err := Fingerprint(rc)
	if err != nil {
		return err
	}
	e.Sink.PrintFull(src + " -> " + dst + ": fingerprint " + fp)
	return nil
}

func progressFraction(copied, total int64) string {
	return strconv.FormatInt(copied, 10) + "/" + strconv.FormatInt(total, 10)
}
