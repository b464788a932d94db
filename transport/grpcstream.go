package transport

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/bobg/adbsync/transport/grpcstream"
)

func init() {
	Register("grpcstream", func(ctx context.Context, conf map[string]interface{}) (io.ReadWriteCloser, error) {
		addr, ok := conf["addr"].(string)
		if !ok {
			return nil, errors.New(`transport "grpcstream": missing "addr" parameter`)
		}
		var opts []grpc.DialOption
		if insecure, _ := conf["insecure"].(bool); insecure {
			opts = append(opts, grpc.WithInsecure())
		}
		cc, err := grpc.DialContext(ctx, addr, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "dialing %s", addr)
		}
		return grpcstream.Dial(ctx, cc)
	})
}
