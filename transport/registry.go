// Package transport abstracts how a duplex byte stream to the sync
// peer is obtained: a raw TCP dial, a child process's stdin/stdout
// (the "pipe" kind), a gRPC bidi stream (see the grpcstream
// subpackage), or a GCS relay (see the gcsrelay subpackage). The rest
// of the module only ever sees an io.ReadWriteCloser.
package transport

import (
	"context"
	"fmt"
	"io"
)

// Factory dials a duplex stream given a free-form config map, the way
// a host's config file would describe one transport among several.
type Factory func(ctx context.Context, conf map[string]interface{}) (io.ReadWriteCloser, error)

var registry = make(map[string]Factory)

// Register associates a transport kind (e.g. "tcp", "pipe",
// "grpcstream") with a Factory. Called from each provider's init.
func Register(kind string, f Factory) {
	registry[kind] = f
}

// Dial looks up kind in the registry and invokes its Factory with
// conf.
func Dial(ctx context.Context, kind string, conf map[string]interface{}) (io.ReadWriteCloser, error) {
	f, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("transport kind %q not registered", kind)
	}
	return f(ctx, conf)
}
