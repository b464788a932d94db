package session

import (
	"io"
	"time"
)

// TransferEvent describes one completed file transfer, for audit and
// metrics consumers (see metrics/pglog and metrics/sqlitelog). All
// channel sends are blocking, exactly as in the teacher's streamer.
type TransferEvent struct {
	Op    string // "send_small", "send_large", or "recv"
	Path  string
	Bytes int64
	At    time.Time
	Err   error
}

var _ Session = &Streamer{}

// Streamer wraps a Session, sending a TransferEvent after every
// completed transfer operation to events, mirroring the way the
// teacher's dsync.Streamer wraps a blob store and streams newly added
// refs to a channel instead of only returning them.
type Streamer struct {
	s      Session
	events chan<- TransferEvent
}

// NewStreamer wraps s. If events is nil, the Streamer behaves exactly
// like s.
func NewStreamer(s Session, events chan<- TransferEvent) *Streamer {
	return &Streamer{s: s, events: events}
}

func (s *Streamer) emit(op, path string, n int64, err error) {
	if s.events == nil {
		return
	}
	s.events <- TransferEvent{Op: op, Path: path, Bytes: n, At: time.Now(), Err: err}
}

func (s *Streamer) List(path string, f func(DentEntry) error) error {
	return s.s.List(path, f)
}

func (s *Streamer) Stat(path string) (uint32, uint32, uint32, error) {
	return s.s.Stat(path)
}

func (s *Streamer) StatPipeline(paths []string) ([]StatResult, error) {
	return s.s.StatPipeline(paths)
}

func (s *Streamer) SendSmall(path string, mode uint32, data []byte, mtime uint32) error {
	err := s.s.SendSmall(path, mode, data, mtime)
	s.emit("send_small", path, int64(len(data)), err)
	return err
}

func (s *Streamer) SendLarge(path string, mode uint32, r io.Reader, size int64, mtime uint32, onProgress func(copied, total int64)) error {
	err := s.s.SendLarge(path, mode, r, size, mtime, onProgress)
	s.emit("send_large", path, size, err)
	return err
}

func (s *Streamer) ReadCopyAck() error {
	return s.s.ReadCopyAck()
}

func (s *Streamer) Recv(path string, w io.Writer, onProgress func(copied int64)) error {
	var n int64
	err := s.s.Recv(path, w, func(copied int64) {
		n = copied
		if onProgress != nil {
			onProgress(copied)
		}
	})
	s.emit("recv", path, n, err)
	return err
}

func (s *Streamer) TransferRate() (float64, uint64, time.Duration) {
	return s.s.TransferRate()
}

func (s *Streamer) Close() error {
	return s.s.Close()
}
