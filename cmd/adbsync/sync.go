package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/engine"
)

func (c maincmd) sync(ctx context.Context, fs *flag.FlagSet, args []string) error {
	listOnly := fs.Bool("n", false, "print what would be pushed instead of transferring")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 2 {
		return errors.New("usage: adbsync sync [-n] <local-dir> <remote-dir>")
	}

	e := engine.NewPush(c.s, c.fs, c.sink)
	if c.cfg.MaxChunk != 0 {
		e.MaxChunk = c.cfg.MaxChunk
	}
	err := e.Sync(fs.Arg(0), fs.Arg(1), *listOnly)
	if !*listOnly {
		c.invalidate(fs.Arg(1))
		c.recordTransfer(ctx, "sync", fs.Arg(1))
	}
	return err
}
