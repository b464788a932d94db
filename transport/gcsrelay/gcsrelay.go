// Package gcsrelay is a transport.Factory for environments where the
// two ends of a sync session can't dial each other directly and
// instead relay bytes through a shared GCS bucket: each side writes
// its outgoing bytes as sequence-numbered objects under its own
// prefix and long-polls the peer's prefix for the next object to
// arrive. Grounded on gcs/gcs.go's storage.NewClient/client.Bucket
// setup, generalized from a content-addressed blob store into a
// two-mailbox message queue.
package gcsrelay

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"

	"github.com/bobg/adbsync/transport"
)

func init() {
	transport.Register("gcsrelay", dial)
}

func dial(ctx context.Context, conf map[string]interface{}) (io.ReadWriteCloser, error) {
	bucket, _ := conf["bucket"].(string)
	sendPrefix, _ := conf["send_prefix"].(string)
	recvPrefix, _ := conf["recv_prefix"].(string)
	if bucket == "" || sendPrefix == "" || recvPrefix == "" {
		return nil, errors.New("gcsrelay: config requires bucket, send_prefix, recv_prefix")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "gcsrelay: creating storage client")
	}

	return &conn{
		ctx:        ctx,
		bkt:        client.Bucket(bucket),
		sendPrefix: sendPrefix,
		recvPrefix: recvPrefix,
		pollEvery:  500 * time.Millisecond,
	}, nil
}

// conn adapts a pair of GCS object sequences into an
// io.ReadWriteCloser. Every Write becomes one new object
// "<sendPrefix><seq>"; every Read that runs out of buffered bytes
// long-polls for the next "<recvPrefix><seq>" object to appear.
type conn struct {
	ctx        context.Context
	bkt        *storage.BucketHandle
	sendPrefix string
	recvPrefix string
	pollEvery  time.Duration

	sendSeq int
	recvSeq int
	pending bytes.Buffer
}

func (c *conn) Write(p []byte) (int, error) {
	name := c.sendPrefix + strconv.Itoa(c.sendSeq)
	w := c.bkt.Object(name).NewWriter(c.ctx)
	if _, err := w.Write(p); err != nil {
		w.Close()
		return 0, errors.Wrapf(err, "gcsrelay: writing object %s", name)
	}
	if err := w.Close(); err != nil {
		return 0, errors.Wrapf(err, "gcsrelay: finalizing object %s", name)
	}
	c.sendSeq++
	return len(p), nil
}

func (c *conn) Read(p []byte) (int, error) {
	for c.pending.Len() == 0 {
		if err := c.fetchNext(); err != nil {
			return 0, err
		}
	}
	return c.pending.Read(p)
}

func (c *conn) fetchNext() error {
	name := c.recvPrefix + strconv.Itoa(c.recvSeq)
	for {
		r, err := c.bkt.Object(name).NewReader(c.ctx)
		if err == nil {
			defer r.Close()
			if _, err := io.Copy(&c.pending, r); err != nil {
				return errors.Wrapf(err, "gcsrelay: reading object %s", name)
			}
			c.recvSeq++
			return nil
		}
		if err != storage.ErrObjectNotExist {
			return errors.Wrapf(err, "gcsrelay: opening object %s", name)
		}
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		case <-time.After(c.pollEvery):
		}
	}
}

func (c *conn) Close() error {
	return nil
}
