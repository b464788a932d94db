package main

import (
	"context"
	"flag"
	"log"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/localfs"
)

// gc sweeps a local directory for .adbsync-partial files orphaned by
// a pull that never reached its rename step, e.g. because the process
// was killed. See localfs.Sweep.
func (c maincmd) gc(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("usage: adbsync gc <local-dir>")
	}

	removed, err := localfs.Sweep(c.fs, fs.Arg(0), localfs.KeepSet{})
	if err != nil {
		return err
	}
	for _, path := range removed {
		log.Printf("removed orphaned staging file %s", path)
	}
	c.sink.PrintFull(progressSummary(len(removed)))
	return nil
}

func progressSummary(n int) string {
	if n == 1 {
		return "1 orphaned staging file removed."
	}
	return strconv.Itoa(n) + " orphaned staging files removed."
}
