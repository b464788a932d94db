package session

import (
	"bytes"
	"testing"

	"github.com/bobg/adbsync/adbsyncerr"
	"github.com/bobg/adbsync/wire"
)

// fakePeer is a duplex stream backed by independent buffers, with the
// "server" side's bytes pre-seeded by the test and the "client"
// side's writes captured for inspection, mirroring wire's own
// pipeStream test fake.
type fakePeer struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func newFakePeer(serverBytes []byte) *fakePeer {
	return &fakePeer{in: bytes.NewBuffer(serverBytes), out: new(bytes.Buffer)}
}

func (f *fakePeer) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakePeer) Write(p []byte) (int, error) { return f.out.Write(p) }
func (f *fakePeer) Close() error                { return nil }

func TestListEmpty(t *testing.T) {
	peer := newFakePeer(wire.EncodeDoneEmpty())
	c := New(peer, 0)

	var got []DentEntry
	if err := c.List("/empty", func(d DentEntry) error {
		got = append(got, d)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d entries, want 0", len(got))
	}
}

func TestListThreeEntries(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(wire.EncodeDent(0o40755, 0, 100, "a"))
	buf.Write(wire.EncodeDent(0o100644, 7, 200, "b.txt"))
	buf.Write(wire.EncodeDent(0o120777, 9, 300, "l"))
	buf.Write(wire.EncodeDoneEmpty())

	peer := newFakePeer(buf.Bytes())
	c := New(peer, 0)

	var got []DentEntry
	if err := c.List("/", func(d DentEntry) error {
		got = append(got, d)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].Name != "a" || got[1].Name != "b.txt" || got[2].Name != "l" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestSendSmallIsOneBurst(t *testing.T) {
	peer := newFakePeer(wire.EncodeOkay())
	c := New(peer, 0)

	data := []byte("hello\nworld")
	if err := c.SendSmall("/r/x", 0o100644, data, 42); err != nil {
		t.Fatal(err)
	}
	want, err := wire.EncodeSmallFileBurst("/r/x", 0o100644, data, 42)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(peer.out.Bytes(), want) {
		t.Errorf("written bytes = %q, want the burst %q", peer.out.Bytes(), want)
	}
	if err := c.ReadCopyAck(); err != nil {
		t.Fatal(err)
	}

	if _, total, _ := c.TransferRate(); total != uint64(len(data)) {
		t.Errorf("totalBytes = %d, want %d", total, len(data))
	}
}

func TestSendLargeChunking(t *testing.T) {
	peer := newFakePeer(wire.EncodeOkay())
	c := New(peer, 1024)

	data := make([]byte, 2500)
	for i := range data {
		data[i] = byte(i)
	}

	var progressCalls [][2]int64
	err := c.SendLarge("/r/big", 0o100644, bytes.NewReader(data), int64(len(data)), 7, func(copied, total int64) {
		progressCalls = append(progressCalls, [2]int64{copied, total})
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(progressCalls) != 3 {
		t.Fatalf("got %d progress calls, want 3: %v", len(progressCalls), progressCalls)
	}
	if progressCalls[2][0] != 2500 {
		t.Errorf("final copied = %d, want 2500", progressCalls[2][0])
	}

	// Replay the written bytes through a stream to check framing shape.
	stream := wire.NewFramedStream(newFakePeer(peer.out.Bytes()))
	id, length, err := stream.ReadHeader()
	if err != nil || id != wire.SEND {
		t.Fatalf("SEND header: id=%s err=%v", id, err)
	}
	payload := make([]byte, length)
	stream.ReadExact(payload)
	if string(payload) != "/r/big,33188" {
		t.Errorf("SEND payload = %q", payload)
	}
	var chunks int
	for {
		id, length, err := stream.ReadHeader()
		if err != nil {
			t.Fatal(err)
		}
		if id == wire.DONE {
			if length != 7 {
				t.Errorf("DONE mtime = %d, want 7", length)
			}
			break
		}
		if id != wire.DATA {
			t.Fatalf("unexpected id %s", id)
		}
		buf := make([]byte, length)
		stream.ReadExact(buf)
		chunks++
	}
	if chunks != 3 {
		t.Errorf("got %d DATA chunks, want 3", chunks)
	}
}

func TestRecvFailMidStream(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(wire.EncodeData(make([]byte, 100)))
	buf.Write(wire.EncodeFail("disk full"))

	peer := newFakePeer(buf.Bytes())
	c := New(peer, 0)

	var dest bytes.Buffer
	err := c.Recv("/r/f", &dest, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	msg, ok := adbsyncerr.IsRemoteCopyFail(err)
	if !ok || msg != "disk full" {
		t.Errorf("got err=%v", err)
	}
}

func TestRecvOversizedChunkIsProtocolError(t *testing.T) {
	peer := newFakePeer(wire.EncodeData(make([]byte, wire.DefaultMaxChunk+1)))
	c := New(peer, wire.DefaultMaxChunk)

	var dest bytes.Buffer
	if err := c.Recv("/r/big", &dest, nil); err == nil {
		t.Fatal("expected a protocol error for an oversized DATA frame")
	}
}

func TestCloseSendsQuitAndDrains(t *testing.T) {
	peer := newFakePeer([]byte("trailing garbage to drain"))
	c := New(peer, 0)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	id, _ := wire.DecodeHeader(peer.out.Bytes()[:8])
	if id != wire.QUIT {
		t.Errorf("expected QUIT to be written, got id %s", id)
	}
}
