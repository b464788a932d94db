package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/engine"
)

func (c maincmd) ls(ctx context.Context, fs *flag.FlagSet, args []string) error {
	recursive := fs.Bool("R", false, "recurse into subdirectories")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("usage: adbsync ls [-R] <remote-path>")
	}
	if *recursive {
		return engine.ListRecursive(ctx, c.s, c.sink, fs.Arg(0))
	}
	return engine.List(c.s, c.sink, fs.Arg(0))
}
