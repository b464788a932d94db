package grpcstream

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
)

// conn adapts a grpc.Stream (the common embedding of both
// grpc.ClientStream and grpc.ServerStream) into an io.ReadWriteCloser,
// so the rest of the module can drive it with wire.FramedStream
// exactly as it would drive a TCP socket. Each gRPC message is one
// opaque chunk of bytes; Read buffers whatever arrived in the last
// RecvMsg until the caller's buffer is satisfied, since callers (via
// wire.FramedStream.ReadExact) ask for arbitrary byte counts that
// rarely line up with message boundaries.
type conn struct {
	stream grpc.Stream
	pend   bytes.Buffer
	closer func() error
}

func newConn(stream grpc.Stream, closer func() error) *conn {
	return &conn{stream: stream, closer: closer}
}

func (c *conn) Read(p []byte) (int, error) {
	for c.pend.Len() == 0 {
		var msg []byte
		if err := c.stream.RecvMsg(&msg); err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, errors.Wrap(err, "receiving stream message")
		}
		c.pend.Write(msg)
	}
	return c.pend.Read(p)
}

func (c *conn) Write(p []byte) (int, error) {
	if err := c.stream.SendMsg(p); err != nil {
		return 0, errors.Wrap(err, "sending stream message")
	}
	return len(p), nil
}

func (c *conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
