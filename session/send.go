package session

import (
	"io"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/adbsyncerr"
	"github.com/bobg/adbsync/wire"
)

// SendSmall implements Session, using the SmallFile burst form:
// SEND header, path, DATA header, the whole file, DONE, all in one
// coalesced write.
func (c *Conn) SendSmall(path string, mode uint32, data []byte, mtime uint32) error {
	buf, err := wire.EncodeSmallFileBurst(path, mode, data, mtime)
	if err != nil {
		return err
	}
	if err := c.stream.WriteExact(buf); err != nil {
		c.poison()
		return err
	}
	c.totalBytes += uint64(len(data))
	return nil
}

// SendLarge implements Session, streaming size bytes from r in
// max-chunk pieces.
func (c *Conn) SendLarge(path string, mode uint32, r io.Reader, size int64, mtime uint32, onProgress func(copied, total int64)) error {
	req, err := wire.EncodeSendReq(path, mode)
	if err != nil {
		return err
	}
	if err := c.stream.WriteExact(req); err != nil {
		c.poison()
		return err
	}

	buf := make([]byte, c.maxChunk)
	var copied int64
	for {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			if werr := c.stream.WriteExact(wire.EncodeData(buf[:n])); werr != nil {
				c.poison()
				return werr
			}
			c.totalBytes += uint64(n)
			copied += int64(n)
			if onProgress != nil {
				onProgress(copied, size)
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			c.poison()
			return errors.Wrap(rerr, "reading local source")
		}
	}

	if err := c.stream.WriteExact(wire.EncodeDone(mtime)); err != nil {
		c.poison()
		return err
	}
	return nil
}

// ReadCopyAck implements Session.
func (c *Conn) ReadCopyAck() error {
	id, length, err := c.stream.ReadHeader()
	if err != nil {
		c.poison()
		return err
	}
	switch id {
	case wire.OKAY:
		return nil
	case wire.FAIL:
		msg := make([]byte, length)
		if err := c.stream.ReadExact(msg); err != nil {
			c.poison()
			return err
		}
		return adbsyncerr.NewRemoteCopyFail(string(msg))
	default:
		c.poison()
		return errors.Wrapf(adbsyncerr.ErrProtocol, "unexpected id %s as copy ack", id)
	}
}
