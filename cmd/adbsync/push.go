package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/engine"
	"github.com/bobg/adbsync/metrics"
)

func (c maincmd) push(ctx context.Context, fs *flag.FlagSet, args []string) error {
	verify := fs.Bool("verify", false, "fingerprint each pushed file's content after transfer")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() < 2 {
		return errors.New("usage: adbsync push [-verify] <local-src>... <remote-dst>")
	}
	srcs := fs.Args()[:fs.NArg()-1]
	dst := fs.Arg(fs.NArg() - 1)

	e := engine.NewPush(c.s, c.fs, c.sink)
	e.Verify = *verify
	if c.cfg.MaxChunk != 0 {
		e.MaxChunk = c.cfg.MaxChunk
	}
	err := e.Push(srcs, dst)
	c.invalidate(dst)
	c.recordTransfer(ctx, "push", dst)
	return err
}

func (c maincmd) recordTransfer(ctx context.Context, op, dst string) {
	rateMBps, totalBytes, _ := c.s.TransferRate()
	version, verr := c.cfg.Version()
	if verr != nil {
		version = ""
	}
	err := c.rec.RecordTransfer(ctx, metrics.TransferRecord{
		Op:            op,
		Dst:           dst,
		Bytes:         int64(totalBytes),
		RateMBps:      rateMBps,
		At:            recordTime(),
		ConfigVersion: version,
	})
	if err != nil {
		log.Printf("recording transfer audit log entry: %s", err)
	}
}

// recordTime exists so tests can stub the clock; production calls it
// straight through to time.Now.
var recordTime = func() time.Time { return time.Now() }
