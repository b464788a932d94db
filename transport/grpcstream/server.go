package grpcstream

import (
	"io"

	"google.golang.org/grpc"
)

// Handler is invoked once per incoming Pipe stream with a duplex byte
// connection; it should drive the connection to completion and
// return when the peer is done.
type Handler func(conn io.ReadWriteCloser) error

// Server registers a Handler as the implementation of the Pipe
// streaming RPC.
type Server struct {
	handle Handler
}

// NewServer wraps handle for registration with a *grpc.Server.
func NewServer(handle Handler) *Server {
	return &Server{handle: handle}
}

// Register adds the Pipe service to gs, backed by s.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

func pipeHandler(srv interface{}, stream grpc.ServerStream) error {
	s := srv.(*Server)
	c := newConn(stream, nil)
	return s.handle(c)
}
