package session

import (
	"io"
	"log"
	"time"
)

var _ Session = &LoggingSession{}

// LoggingSession wraps a Session, logging every operation as it
// happens, the way the teacher's logging.Store wraps a nested store.
type LoggingSession struct {
	s Session
}

// NewLogging wraps s with operation logging.
func NewLogging(s Session) *LoggingSession {
	return &LoggingSession{s: s}
}

func (l *LoggingSession) List(path string, f func(DentEntry) error) error {
	log.Printf("List %s", path)
	n := 0
	err := l.s.List(path, func(d DentEntry) error {
		n++
		return f(d)
	})
	if err != nil {
		log.Printf("  ERROR in List %s: %s", path, err)
	} else {
		log.Printf("  List %s: %d entries", path, n)
	}
	return err
}

func (l *LoggingSession) Stat(path string) (uint32, uint32, uint32, error) {
	mode, size, mtime, err := l.s.Stat(path)
	if err != nil {
		log.Printf("ERROR in Stat %s: %s", path, err)
	} else {
		log.Printf("Stat %s: mode=%o size=%d mtime=%d", path, mode, size, mtime)
	}
	return mode, size, mtime, err
}

func (l *LoggingSession) StatPipeline(paths []string) ([]StatResult, error) {
	log.Printf("StatPipeline: %d paths", len(paths))
	results, err := l.s.StatPipeline(paths)
	if err != nil {
		log.Printf("  ERROR in StatPipeline: %s", err)
	}
	return results, err
}

func (l *LoggingSession) SendSmall(path string, mode uint32, data []byte, mtime uint32) error {
	err := l.s.SendSmall(path, mode, data, mtime)
	if err != nil {
		log.Printf("ERROR in SendSmall %s: %s", path, err)
	} else {
		log.Printf("SendSmall %s: %d bytes", path, len(data))
	}
	return err
}

func (l *LoggingSession) SendLarge(path string, mode uint32, r io.Reader, size int64, mtime uint32, onProgress func(copied, total int64)) error {
	log.Printf("SendLarge %s: %d bytes", path, size)
	err := l.s.SendLarge(path, mode, r, size, mtime, onProgress)
	if err != nil {
		log.Printf("  ERROR in SendLarge %s: %s", path, err)
	}
	return err
}

func (l *LoggingSession) ReadCopyAck() error {
	err := l.s.ReadCopyAck()
	if err != nil {
		log.Printf("copy ack: %s", err)
	}
	return err
}

func (l *LoggingSession) Recv(path string, w io.Writer, onProgress func(copied int64)) error {
	log.Printf("Recv %s", path)
	err := l.s.Recv(path, w, onProgress)
	if err != nil {
		log.Printf("  ERROR in Recv %s: %s", path, err)
	}
	return err
}

func (l *LoggingSession) TransferRate() (float64, uint64, time.Duration) {
	return l.s.TransferRate()
}

func (l *LoggingSession) Close() error {
	err := l.s.Close()
	if err != nil {
		log.Printf("ERROR closing session: %s", err)
	} else {
		log.Print("session closed")
	}
	return err
}
