// Package session implements SyncSession: the request/response
// transaction layer built on top of package wire's framing, plus
// decorators (logging, event streaming) that wrap it the way the
// teacher wraps its store interface.
package session

import (
	"io"
	"time"

	"github.com/bobg/adbsync/wire"
)

// DentEntry is one entry of a LIST response.
type DentEntry struct {
	Mode uint32
	Size uint32
	Time uint32
	Name string
}

// Session is the capability the push/pull/list engines drive. It is
// an interface, not a concrete type, so that logging and
// event-streaming wrappers can sit in front of a real Conn (or a test
// fake) without the engines knowing the difference — the same shape
// the teacher uses for its store interface plus its logging.Store and
// rpc.Client implementations of it.
type Session interface {
	// List streams DENT entries for path to f, stopping at DONE. f's
	// error, if any, aborts the transaction and is returned.
	List(path string, f func(DentEntry) error) error

	// Stat returns the remote metadata for path. mode == 0 means the
	// path does not exist; that is not itself an error.
	Stat(path string) (mode, size, mtime uint32, err error)

	// StatPipeline writes all of paths' STAT requests in one batched
	// write before reading any response, then reads the responses in
	// the same order — the mandatory pipelining of the sync-skip phase
	// (property P6). The N-th result corresponds to the N-th path.
	StatPipeline(paths []string) ([]StatResult, error)

	// SendSmall pushes data as a single SmallFile burst write.
	SendSmall(path string, mode uint32, data []byte, mtime uint32) error

	// SendLarge pushes size bytes read from r in max-chunk pieces,
	// calling onProgress after each chunk with (copied, total).
	SendLarge(path string, mode uint32, r io.Reader, size int64, mtime uint32, onProgress func(copied, total int64)) error

	// ReadCopyAck reads the single terminal OKAY/FAIL that follows a
	// SEND transaction's body. A non-nil error is an
	// *adbsyncerr.RemoteCopyFail for a FAIL response, or a protocol/IO
	// error otherwise.
	ReadCopyAck() error

	// Recv issues RECV for path and streams the response body into w,
	// calling onProgress after each chunk with the cumulative byte
	// count. The caller is responsible for discarding w's partial
	// contents on a non-nil return (see localfs.Sweep and the
	// PullEngine's per-item cleanup).
	Recv(path string, w io.Writer, onProgress func(copied int64)) error

	// TransferRate reports the session's cumulative throughput.
	TransferRate() (rateMBps float64, totalBytes uint64, elapsed time.Duration)

	// Close performs the session's shutdown discipline: QUIT-and-drain
	// if the session is still healthy, or a bare close if it has been
	// poisoned by a prior protocol/IO error.
	Close() error
}

var _ Session = &Conn{}

// Conn is the real Session, built directly on a wire.FramedStream.
type Conn struct {
	stream     *wire.FramedStream
	maxChunk   int
	totalBytes uint64
	start      time.Time
	healthy    bool
}

// New wraps rw as a Session with the given max chunk size (0 selects
// wire.DefaultMaxChunk).
func New(rw io.ReadWriteCloser, maxChunk int) *Conn {
	if maxChunk <= 0 {
		maxChunk = wire.DefaultMaxChunk
	}
	return &Conn{
		stream:   wire.NewFramedStream(rw),
		maxChunk: maxChunk,
		start:    time.Now(),
		healthy:  true,
	}
}

// poison marks the session unhealthy, so Close skips the QUIT/drain
// handshake — matching the design's rule that a session that has seen
// a protocol or I/O error must not attempt further traffic.
func (c *Conn) poison() {
	c.healthy = false
}

// TransferRate implements Session.
func (c *Conn) TransferRate() (float64, uint64, time.Duration) {
	elapsed := time.Since(c.start)
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0, c.totalBytes, elapsed
	}
	mb := float64(c.totalBytes) / (1024 * 1024)
	return mb / secs, c.totalBytes, elapsed
}

// Close implements Session.
func (c *Conn) Close() error {
	if c.healthy {
		if err := c.stream.WriteExact(wire.EncodeQuit()); err == nil {
			c.stream.Drain()
		}
	}
	return c.stream.Close()
}
