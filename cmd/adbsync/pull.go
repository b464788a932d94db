package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/engine"
)

func (c maincmd) pull(ctx context.Context, fs *flag.FlagSet, args []string) error {
	copyAttrs := fs.Bool("a", c.cfg.CopyAttrs, "restore mtime/mode on pulled files")
	verify := fs.Bool("verify", false, "fingerprint each pulled file's content after transfer")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() < 2 {
		return errors.New("usage: adbsync pull [-a] [-verify] <remote-src>... <local-dst>")
	}
	srcs := fs.Args()[:fs.NArg()-1]
	dst := fs.Arg(fs.NArg() - 1)

	e := engine.NewPull(c.s, c.fs, c.sink, *copyAttrs)
	e.Verify = *verify
	if c.cfg.MaxChunk != 0 {
		e.MaxChunk = c.cfg.MaxChunk
	}
	if _, err := e.Sweep(parentOf(dst)); err != nil {
		return errors.Wrap(err, "sweeping orphaned staging files")
	}
	err := e.Pull(srcs, dst)
	c.recordTransfer(ctx, "pull", dst)
	return err
}

func parentOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			if i == 0 {
				return "/"
			}
			return p[:i]
		}
	}
	return "."
}
