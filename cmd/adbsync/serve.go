package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/bobg/adbsync/transport"
	"github.com/bobg/adbsync/transport/grpcstream"
)

// serve runs a gRPC relay: every client that opens a Pipe stream gets
// bridged 1:1 to a fresh dial of the configured downstream transport
// (e.g. a "pipe" transport spawning the real sync peer as a child
// process, or a "tcp" transport to a peer unreachable from outside
// this host). This process never speaks the sync protocol itself; it
// only forwards bytes, the way the teacher's rpc.Server sits in front
// of a real store without reimplementing store semantics.
func (c maincmd) serve(ctx context.Context, fs *flag.FlagSet, args []string) error {
	addr := fs.String("addr", ":0", "address to listen on")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	downstreamKind, _ := c.cfg.Transport["downstream_kind"].(string)
	downstreamConf, _ := c.cfg.Transport["downstream_conf"].(map[string]interface{})
	if downstreamKind == "" {
		return errors.New(`config.transport must set "downstream_kind" for serve`)
	}

	gs := grpc.NewServer()
	srv := grpcstream.NewServer(func(conn io.ReadWriteCloser) error {
		defer conn.Close()
		down, err := transport.Dial(ctx, downstreamKind, downstreamConf)
		if err != nil {
			return errors.Wrap(err, "dialing downstream transport")
		}
		defer down.Close()
		return relay(conn, down)
	})
	srv.Register(gs)

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", *addr)
	}
	defer lis.Close()

	c.sink.PrintFull(fmt.Sprintf("listening on %s", lis.Addr()))
	return gs.Serve(lis)
}

// relay copies bytes in both directions between a and b until either
// side closes or errors.
func relay(a, b io.ReadWriteCloser) error {
	errc := make(chan error, 2)
	go func() {
		_, err := io.Copy(a, b)
		errc <- err
	}()
	go func() {
		_, err := io.Copy(b, a)
		errc <- err
	}()
	return <-errc
}
