package session

import (
	"github.com/pkg/errors"

	"github.com/bobg/adbsync/adbsyncerr"
	"github.com/bobg/adbsync/wire"
)

// List implements Session. Per invariant I3, a LIST transaction ends
// with exactly one DONE and no DENT follows it.
func (c *Conn) List(path string, f func(DentEntry) error) error {
	req, err := wire.EncodeListReq(path)
	if err != nil {
		return err
	}
	if err := c.stream.WriteExact(req); err != nil {
		c.poison()
		return err
	}

	for {
		id, length, err := c.stream.ReadHeader()
		if err != nil {
			c.poison()
			return err
		}
		switch id {
		case wire.DONE:
			if length != 0 {
				c.poison()
				return errors.Wrapf(adbsyncerr.ErrProtocol, "LIST DONE with nonzero length %d", length)
			}
			return nil
		case wire.DENT:
			hdr, err := c.stream.ReadDentHeader()
			if err != nil {
				c.poison()
				return err
			}
			name := make([]byte, hdr.NameLen)
			if err := c.stream.ReadExact(name); err != nil {
				c.poison()
				return err
			}
			if err := f(DentEntry{Mode: hdr.Mode, Size: hdr.Size, Time: hdr.Time, Name: string(name)}); err != nil {
				return err
			}
		default:
			c.poison()
			return errors.Wrapf(adbsyncerr.ErrProtocol, "unexpected id %s in LIST response", id)
		}
	}
}

// Stat implements Session. A missing remote path is reported as
// mode == 0, not as an error.
func (c *Conn) Stat(path string) (uint32, uint32, uint32, error) {
	req, err := wire.EncodeStatReq(path)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := c.stream.WriteExact(req); err != nil {
		c.poison()
		return 0, 0, 0, err
	}
	id, _, err := c.stream.ReadHeader()
	if err != nil {
		c.poison()
		return 0, 0, 0, err
	}
	if id != wire.STAT {
		c.poison()
		return 0, 0, 0, errors.Wrapf(adbsyncerr.ErrProtocol, "unexpected id %s in STAT response", id)
	}
	hdr, err := c.stream.ReadStatHeader()
	if err != nil {
		c.poison()
		return 0, 0, 0, err
	}
	return hdr.Mode, hdr.Size, hdr.Time, nil
}

// StatResult is one entry of a StatPipeline result.
type StatResult struct {
	Mode uint32
	Size uint32
	Time uint32
}

// StatPipeline implements Session.
func (c *Conn) StatPipeline(paths []string) ([]StatResult, error) {
	reqs := make([][]byte, len(paths))
	for i, p := range paths {
		req, err := wire.EncodeStatReq(p)
		if err != nil {
			return nil, err
		}
		reqs[i] = req
	}
	if err := c.stream.WriteBatched(reqs...); err != nil {
		c.poison()
		return nil, err
	}

	results := make([]StatResult, len(paths))
	for i := range paths {
		id, _, err := c.stream.ReadHeader()
		if err != nil {
			c.poison()
			return nil, err
		}
		if id != wire.STAT {
			c.poison()
			return nil, errors.Wrapf(adbsyncerr.ErrProtocol, "unexpected id %s in pipelined STAT response", id)
		}
		hdr, err := c.stream.ReadStatHeader()
		if err != nil {
			c.poison()
			return nil, err
		}
		results[i] = StatResult{Mode: hdr.Mode, Size: hdr.Size, Time: hdr.Time}
	}
	return results, nil
}
