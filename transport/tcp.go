package transport

import (
	"context"
	"io"
	"net"

	"github.com/pkg/errors"
)

func init() {
	Register("tcp", func(ctx context.Context, conf map[string]interface{}) (io.ReadWriteCloser, error) {
		addr, ok := conf["addr"].(string)
		if !ok {
			return nil, errors.New(`transport "tcp": missing "addr" parameter`)
		}
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(err, "dialing %s", addr)
		}
		return conn, nil
	})
}
