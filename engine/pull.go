package engine

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/adbsyncerr"
	"github.com/bobg/adbsync/localfs"
	"github.com/bobg/adbsync/progress"
	"github.com/bobg/adbsync/session"
	"github.com/bobg/adbsync/tree"
	"github.com/bobg/adbsync/wire"
)

// PullEngine drives the pull verb (§4.F).
type PullEngine struct {
	S         session.Session
	FS        localfs.FS
	Sink      progress.Sink
	CopyAttrs bool
	MaxChunk  int

	// Verify, when set, fingerprints each pulled regular file's local
	// content after a successful transfer and prints the digest; see
	// PushEngine.Verify.
	Verify bool
}

// NewPull constructs a PullEngine with the protocol's default chunk
// size.
func NewPull(s session.Session, fs localfs.FS, sink progress.Sink, copyAttrs bool) *PullEngine {
	return &PullEngine{S: s, FS: fs, Sink: sink, CopyAttrs: copyAttrs, MaxChunk: wire.DefaultMaxChunk}
}

// Pull implements do_sync_pull: pull every path in srcs to dst.
func (e *PullEngine) Pull(srcs []string, dst string) error {
	localInfo, statErr := e.FS.Lstat(dst)
	destExists := statErr == nil
	destIsDir := destExists && classify(localInfo) == kindDir

	if !destExists && len(srcs) > 1 {
		return errors.Errorf("local destination %s does not exist", dst)
	}

	var pulled, skipped int
	var lastErr error
	for _, src := range srcs {
		mode, size, mtime, err := e.S.Stat(src)
		if err != nil {
			progress.Error(e.Sink, "%s: %s", src, err)
			lastErr = err
			continue
		}
		if mode == 0 {
			progress.Error(e.Sink, "remote path not found: %s", src)
			lastErr = adbsyncerr.ErrNotFound
			continue
		}

		if wire.IsDir(mode) {
			dstDir := dst
			if destIsDir {
				dstDir = join(dst, basename(src))
			}
			p, s, err := e.pullDir(src, dstDir)
			pulled += p
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
		if err := e.pullOne(src, dstPath, mode, size, mtime); err != nil {
			progress.Error(e.Sink, "failed to copy '%s' to '%s': %s", src, dstPath, err)
			lastErr = err
			continue
		}
		pulled++
	}

	e.Sink.PrintFull(summaryLine(dst, "pulled", pulled, skipped, e.S))
	return lastErr
}

// pullDir walks src recursively via the remote TreeWalker and pulls
// every item.
func (e *PullEngine) pullDir(src, dst string) (pulled, skipped int, err error) {
	items, err := tree.WalkRemote(e.S, src, dst)
	if err != nil {
		return 0, 0, err
	}
	for _, it := range items {
		if err := e.pullOne(it.Src, it.Dst, it.Mode, uint32(it.Size), it.Mtime); err != nil {
			progress.Error(e.Sink, "failed to copy '%s' to '%s': %s", it.Src, it.Dst, err)
			continue
		}
		pulled++
	}
	return pulled, skipped, nil
}

// pullOne pulls a single remote path to dst, implementing the
// receive state machine of §4.F. The transfer lands in a
// localfs.StagingSuffix-marked file next to dst and is only renamed
// into place once Recv and Close both succeed; on any failure the
// staging file is unlinked rather than left behind half-written
// (property P7). If the process dies before either outcome, the
// orphaned staging file is left for localfs.Sweep to find on the next
// run rather than masquerading as a complete dst. An advisory lock on
// dst serializes this whole sequence against any other pull targeting
// the same destination in another process.
func (e *PullEngine) pullOne(src, dst string, mode, size, mtime uint32) error {
	if err := e.FS.Lock(dst); err != nil {
		return err
	}
	defer e.FS.Unlock(dst)

	parent := parentDir(dst)
	if err := e.FS.MkdirAll(parent, 0o755); err != nil {
		return err
	}

	staging := dst + localfs.StagingSuffix
	if err := e.FS.Remove(staging); err != nil {
		return err
	}

	w, err := e.FS.OpenCreateTrunc(staging, 0o644)
	if err != nil {
		return err
	}

	recvErr := e.S.Recv(src, w, func(copied int64) {
		e.Sink.PrintElide(dst + ": " + progressFraction(copied, int64(size)))
	})
	closeErr := w.Close()

	if recvErr != nil || closeErr != nil {
		e.FS.Remove(staging)
		if recvErr != nil {
			return recvErr
		}
		return closeErr
	}

	if err := e.FS.Rename(staging, dst); err != nil {
		e.FS.Remove(staging)
		return err
	}

	if e.CopyAttrs {
		if err := e.FS.Chtimes(dst, time.Unix(int64(mtime), 0)); err != nil {
			return err
		}
		if err := e.FS.Chmod(dst, os.FileMode(mode&^uint32(e.FS.Umask()))); err != nil {
			return err
		}
	}
	if e.Verify && wire.IsRegular(mode) {
		if err := e.printFingerprint(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// printFingerprint re-reads the just-pulled dst and logs its
// hashsplit content digest, for the optional "-verify" check.
func (e *PullEngine) printFingerprint(src, dst string) error {
	rc, err := e.FS.OpenRead(dst)
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

// Sweep removes orphaned .adbsync-partial files left under dir by a
// prior pull that was killed before it could rename or clean up its
// staging file. It is meant to run once at the start of a pull/sync
// invocation against a directory no other pull is using concurrently
// in this process, so an empty localfs.KeepSet is always correct here.
func (e *PullEngine) Sweep(dir string) ([]string, error) {
	return localfs.Sweep(e.FS, dir, localfs.KeepSet{})
}

func parentDir(p string) string {
	i := lastSlash(p)
	if i < 0 {
		return "/"
	}
	return p[:i]
}

func lastSlash(p string) int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return i
		}
	}
	return -1
}
