package session

import (
	"io"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/adbsyncerr"
	"github.com/bobg/adbsync/wire"
)

// Recv implements Session, running the AwaitHeader/ReadingData state
// machine of §4.F: DATA frames stream into w until DONE; a FAIL or any
// protocol violation is reported as an error, leaving cleanup of w's
// partial contents to the caller.
func (c *Conn) Recv(path string, w io.Writer, onProgress func(copied int64)) error {
	req, err := wire.EncodeRecvReq(path)
	if err != nil {
		return err
	}
	if err := c.stream.WriteExact(req); err != nil {
		c.poison()
		return err
	}

	var copied int64
	for {
		id, length, err := c.stream.ReadHeader()
		if err != nil {
			c.poison()
			return err
		}
		switch id {
		case wire.DATA:
			if length > uint32(c.maxChunk) {
				c.poison()
				return errors.Wrapf(adbsyncerr.ErrProtocol, "DATA length %d exceeds max chunk", length)
			}
			buf := make([]byte, length)
			if err := c.stream.ReadExact(buf); err != nil {
				c.poison()
				return err
			}
			if _, err := w.Write(buf); err != nil {
				c.poison()
				return errors.Wrap(err, "writing to local destination")
			}
			c.totalBytes += uint64(length)
			copied += int64(length)
			if onProgress != nil {
				onProgress(copied)
			}
		case wire.DONE:
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
			return errors.Wrapf(adbsyncerr.ErrProtocol, "unexpected id %s in RECV response", id)
		}
	}
}
