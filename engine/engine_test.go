package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bobg/adbsync/localfs"
	"github.com/bobg/adbsync/progress"
	"github.com/bobg/adbsync/session"
	"github.com/bobg/adbsync/wire"
)

// fakePeer is a duplex stream backed by independent buffers, seeded
// with the bytes a mock server would have sent.
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

func TestPushSmallFile(t *testing.T) {
	fs := localfs.NewMem()
	fs.PutFile("/local/x.txt", 0o644, []byte("hello\nworld"), time.Unix(42, 0))

	// Remote dest "stat" (nonexistent, single source so allowed), then OKAY ack.
	var seed bytes.Buffer
	seed.Write(wire.EncodeStatResp(0, 0, 0))
	seed.Write(wire.EncodeOkay())
	peer := newFakePeer(seed.Bytes())
	sess := session.New(peer, 0)

	rec := &progress.Recording{}
	e := NewPush(sess, fs, rec)
	if err := e.Push([]string{"/local/x.txt"}, "/r/x"); err != nil {
		t.Fatal(err)
	}

	stream := wire.NewFramedStream(newFakePeer(peer.out.Bytes()))
	// skip the STAT request we sent for the destination
	id, length, err := stream.ReadHeader()
	if err != nil || id != wire.STAT {
		t.Fatalf("expected STAT request first, got id=%s err=%v", id, err)
	}
	path := make([]byte, length)
	stream.ReadExact(path)

	id, length, err = stream.ReadHeader()
	if err != nil || id != wire.SEND {
		t.Fatalf("expected SEND next, got id=%s err=%v", id, err)
	}
	payload := make([]byte, length)
	stream.ReadExact(payload)
	if string(payload) != "/r/x,33188" {
		t.Errorf("SEND payload = %q", payload)
	}
}

func TestPushVerifyPrintsFingerprint(t *testing.T) {
	fs := localfs.NewMem()
	fs.PutFile("/local/x.txt", 0o644, []byte("hello\nworld"), time.Unix(42, 0))

	var seed bytes.Buffer
	seed.Write(wire.EncodeStatResp(0, 0, 0))
	seed.Write(wire.EncodeOkay())
	peer := newFakePeer(seed.Bytes())
	sess := session.New(peer, 0)

	rec := &progress.Recording{}
	e := NewPush(sess, fs, rec)
	e.Verify = true
	if err := e.Push([]string{"/local/x.txt"}, "/r/x"); err != nil {
		t.Fatal(err)
	}

	wantFP, err := Fingerprint(bytes.NewReader([]byte("hello\nworld")))
	if err != nil {
		t.Fatal(err)
	}
	var sawFP bool
	for _, line := range rec.Lines {
		if line == "/local/x.txt -> /r/x: fingerprint "+wantFP {
			sawFP = true
		}
	}
	if !sawFP {
		t.Errorf("expected a fingerprint line, got: %v", rec.Lines)
	}
}

func TestPullFailMidStreamLeavesNoFile(t *testing.T) {
	fs := localfs.NewMem()

	var seed bytes.Buffer
	seed.Write(wire.EncodeStatResp(0o100644, 100, 1000)) // remote stat of the source
	seed.Write(wire.EncodeData(make([]byte, 100)))
	seed.Write(wire.EncodeFail("disk full"))
	peer := newFakePeer(seed.Bytes())
	sess := session.New(peer, 0)

	rec := &progress.Recording{}
	e := NewPull(sess, fs, rec, false)
	err := e.Pull([]string{"/r/f"}, "/l/f")
	if err == nil {
		t.Fatal("expected an error")
	}

	if _, statErr := fs.Stat("/l/f"); statErr == nil {
		t.Error("partial pull should not leave a destination file")
	}

	var sawErrLine bool
	for _, line := range rec.Lines {
		if line == "adb: error: failed to copy '/r/f' to '/l/f': disk full" {
			sawErrLine = true
		}
	}
	if !sawErrLine {
		t.Errorf("expected a formatted error line, got: %v", rec.Lines)
	}
}

func TestPullVerifyPrintsFingerprint(t *testing.T) {
	fs := localfs.NewMem()

	content := []byte("hello\nworld")
	var seed bytes.Buffer
	seed.Write(wire.EncodeStatResp(0o100644, uint32(len(content)), 1000))
	seed.Write(wire.EncodeData(content))
	seed.Write(wire.EncodeDone(1000))
	peer := newFakePeer(seed.Bytes())
	sess := session.New(peer, 0)

	rec := &progress.Recording{}
	e := NewPull(sess, fs, rec, false)
	e.Verify = true
	if err := e.Pull([]string{"/r/f"}, "/l/f"); err != nil {
		t.Fatal(err)
	}

	wantFP, err := Fingerprint(bytes.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	var sawFP bool
	for _, line := range rec.Lines {
		if line == "/r/f -> /l/f: fingerprint "+wantFP {
			sawFP = true
		}
	}
	if !sawFP {
		t.Errorf("expected a fingerprint line, got: %v", rec.Lines)
	}
}

func TestListRecursiveStreamsNestedEntries(t *testing.T) {
	fs := &recursiveListSession{entries: map[string][]session.DentEntry{
		"/r": {
			{Mode: 0o040755, Name: "sub"},
			{Mode: 0o100644, Size: 5, Time: 10, Name: "f.txt"},
		},
		"/r/sub": {
			{Mode: 0o100644, Size: 1, Time: 20, Name: "g.txt"},
		},
	}}

	rec := &progress.Recording{}
	if err := ListRecursive(context.Background(), fs, rec, "/r"); err != nil {
		t.Fatal(err)
	}
	if len(rec.Lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(rec.Lines), rec.Lines)
	}
}

// recursiveListSession is a minimal session.Session stub exercising
// only List, for ListRecursive/tree.WalkRemoteStream.
type recursiveListSession struct {
	session.Session
	entries map[string][]session.DentEntry
}

func (f *recursiveListSession) List(path string, cb func(session.DentEntry) error) error {
	for _, e := range f.entries[path] {
		if err := cb(e); err != nil {
			return err
		}
	}
	return nil
}

func TestListFormatsHexLines(t *testing.T) {
	var seed bytes.Buffer
	seed.Write(wire.EncodeDent(0o40755, 0, 100, "a"))
	seed.Write(wire.EncodeDent(0o100644, 7, 200, "b.txt"))
	seed.Write(wire.EncodeDoneEmpty())
	peer := newFakePeer(seed.Bytes())
	sess := session.New(peer, 0)

	rec := &progress.Recording{}
	if err := List(sess, rec, "/r"); err != nil {
		t.Fatal(err)
	}
	if len(rec.Lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(rec.Lines), rec.Lines)
	}
	if rec.Lines[0] != "000041ed 00000000 00000064 a" {
		t.Errorf("line 0 = %q", rec.Lines[0])
	}
}
