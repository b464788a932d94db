package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/metrics"
)

// history prints every recorded transfer to a destination, and,
// with -at, the config version that produced the transfer active at
// that moment (via metrics.FindConfigVersion's binary search over the
// sorted history).
func (c maincmd) history(ctx context.Context, fs *flag.FlagSet, args []string) error {
	atstr := fs.String("at", "", "report the config version active at this RFC3339 time instead of listing history")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("usage: adbsync history [-at <time>] <dst>")
	}
	dst := fs.Arg(0)

	records, err := c.rec.History(ctx, dst)
	if err != nil {
		return errors.Wrapf(err, "fetching history for %s", dst)
	}

	if *atstr == "" {
		for _, r := range records {
			c.sink.PrintFull(fmt.Sprintf("%s %s %s %d bytes %.2f MB/s config=%s",
				r.At.Format(time.RFC3339), r.Op, r.Dst, r.Bytes, r.RateMBps, r.ConfigVersion))
		}
		return nil
	}

	at, err := time.Parse(time.RFC3339, *atstr)
	if err != nil {
		return errors.Wrap(err, "parsing -at")
	}
	version, ok := metrics.FindConfigVersion(records, at)
	if !ok {
		return errors.Errorf("no transfer to %s recorded at or before %s", dst, at)
	}
	c.sink.PrintFull(version)
	return nil
}
