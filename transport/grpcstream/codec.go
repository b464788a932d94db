// Package grpcstream carries the sync protocol's own framed bytes
// over a gRPC bidirectional stream, instead of defining a .proto
// message for it. A raw passthrough codec takes the place of the
// usual protoc-generated marshaler: every "message" on the wire is
// simply the next chunk of wire.FramedStream bytes, so the gRPC layer
// here is acting as nothing more than a multiplexed, authenticated,
// load-balanced transport underneath the real protocol in package
// wire.
package grpcstream

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is registered with grpc's encoding package and selected
// via the "adbsync-raw" content-subtype on every call this package
// makes, so it never collides with the default proto codec other
// services on the same process might use.
const codecName = "adbsync-raw"

// rawCodec marshals/unmarshals gRPC messages as plain byte slices,
// with no schema: the message IS the byte slice, matching the shape
// grpc-go documents for proxying opaque payloads without codegen.
type rawCodec struct{}

func (rawCodec) Name() string { return codecName }

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case *[]byte:
		return *b, nil
	case []byte:
		return b, nil
	default:
		return nil, fmt.Errorf("grpcstream: rawCodec cannot marshal %T", v)
	}
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("grpcstream: rawCodec cannot unmarshal into %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

func init() {
	encoding.RegisterCodec(rawCodec{})
}
