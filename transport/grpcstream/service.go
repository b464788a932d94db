package grpcstream

import "google.golang.org/grpc"

const (
	serviceName = "adbsync.grpcstream.Duplex"
	streamName  = "Pipe"
	methodPath  = "/" + serviceName + "/" + streamName
)

// serviceDesc is the hand-written stand-in for what protoc-gen-go-grpc
// would otherwise generate from a .proto service definition: one
// bidirectional streaming method, "Pipe", that both sides read and
// write raw frames over.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*interface{})(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    streamName,
			Handler:       pipeHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "adbsync/grpcstream.proto",
}
