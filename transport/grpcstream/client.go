package grpcstream

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
)

// Dial opens the Pipe stream on an established connection, returning
// a duplex byte stream usable by wire.FramedStream.
func Dial(ctx context.Context, cc grpc.ClientConnInterface) (io.ReadWriteCloser, error) {
	stream, err := cc.NewStream(ctx, &serviceDesc.Streams[0], methodPath, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, errors.Wrap(err, "opening grpcstream pipe")
	}
	return newConn(stream, func() error { return stream.CloseSend() }), nil
}
