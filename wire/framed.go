package wire

import (
	"io"

	"github.com/pkg/errors"
)

// FramedStream provides exact-length read/write over a duplex byte
// stream, plus the header-framing primitives that every message kind
// is built from. The underlying stream is any io.ReadWriteCloser; how
// it was obtained (TCP dial, in-process pipe, gRPC bidi stream) is
// none of FramedStream's concern, matching the design's decision to
// keep the transport collaborator external.
type FramedStream struct {
	rw io.ReadWriteCloser

	// lastLen is the length field of the most recent ReadHeader. In a
	// DENT or STAT response that slot holds the mode.
	lastLen uint32
}

// NewFramedStream wraps rw.
func NewFramedStream(rw io.ReadWriteCloser) *FramedStream {
	return &FramedStream{rw: rw}
}

// ReadExact reads exactly len(buf) bytes, returning a wrapped error if
// the stream closes first.
func (f *FramedStream) ReadExact(buf []byte) error {
	_, err := io.ReadFull(f.rw, buf)
	if err != nil {
		return errors.Wrap(err, "short read")
	}
	return nil
}

// WriteExact writes buf in its entirety, returning a wrapped error on
// any short write or I/O failure.
func (f *FramedStream) WriteExact(buf []byte) error {
	n, err := f.rw.Write(buf)
	if err != nil {
		return errors.Wrap(err, "write")
	}
	if n != len(buf) {
		return errors.Errorf("short write: wrote %d of %d bytes", n, len(buf))
	}
	return nil
}

// WriteBatched coalesces multiple logical writes into a single
// transport write. The protocol is latency-sensitive: a header, its
// path, and any trailer should ship together whenever possible rather
// than as separate round-trippable writes.
func (f *FramedStream) WriteBatched(slices ...[]byte) error {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range slices {
		buf = append(buf, s...)
	}
	return f.WriteExact(buf)
}

// ReadHeader reads the generic 8-byte (id, length) header.
func (f *FramedStream) ReadHeader() (ID, uint32, error) {
	var hdr [headerSize]byte
	if err := f.ReadExact(hdr[:]); err != nil {
		return 0, 0, err
	}
	id, length := DecodeHeader(hdr[:])
	f.lastLen = length
	return id, length, nil
}

// ReadDentHeader decodes the 16 bytes that follow a DENT id. The
// preceding ReadHeader call already consumed the first 4 (the mode),
// so only the remaining 12 are read from the stream.
func (f *FramedStream) ReadDentHeader() (DentHeader, error) {
	var buf [dentHeaderSize]byte
	putU32(buf[0:4], f.lastLen)
	if err := f.ReadExact(buf[4:]); err != nil {
		return DentHeader{}, err
	}
	return DecodeDentHeader(buf[:])
}

// ReadStatHeader decodes the 12 bytes that follow a STAT response id.
// The preceding ReadHeader call already consumed the first 4 (the
// mode), so only the remaining 8 are read from the stream.
func (f *FramedStream) ReadStatHeader() (StatHeader, error) {
	var buf [statHeaderSize]byte
	putU32(buf[0:4], f.lastLen)
	if err := f.ReadExact(buf[4:]); err != nil {
		return StatHeader{}, err
	}
	return DecodeStatHeader(buf[:])
}

// Drain reads from the stream until EOF, discarding everything. It is
// used during orderly shutdown after QUIT has been sent, so that any
// bytes the peer still has in flight don't cause it to block on a
// write to a reader that has gone away.
func (f *FramedStream) Drain() error {
	_, err := io.Copy(io.Discard, f.rw)
	if err != nil {
		return errors.Wrap(err, "draining stream")
	}
	return nil
}

// Close closes the underlying stream.
func (f *FramedStream) Close() error {
	return f.rw.Close()
}
