package grpcstream

import (
	"context"
	"io"
	"testing"
)

// fakeStream is a minimal grpc.Stream fake: a queue of outgoing
// messages to hand back from RecvMsg, and a record of what was sent.
type fakeStream struct {
	toRecv [][]byte
	sent   [][]byte
}

func (f *fakeStream) Context() context.Context { return context.Background() }

func (f *fakeStream) SendMsg(m interface{}) error {
	f.sent = append(f.sent, append([]byte(nil), m.([]byte)...))
	return nil
}

func (f *fakeStream) RecvMsg(m interface{}) error {
	if len(f.toRecv) == 0 {
		return io.EOF
	}
	next := f.toRecv[0]
	f.toRecv = f.toRecv[1:]
	*(m.(*[]byte)) = next
	return nil
}

func TestConnReadAcrossMessageBoundaries(t *testing.T) {
	fs := &fakeStream{toRecv: [][]byte{[]byte("abc"), []byte("de")}}
	c := newConn(fs, nil)

	buf := make([]byte, 4)
	n, err := io.ReadFull(c, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || string(buf) != "abcd" {
		t.Fatalf("got %q", buf[:n])
	}

	buf2 := make([]byte, 1)
	if _, err := io.ReadFull(c, buf2); err != nil {
		t.Fatal(err)
	}
	if string(buf2) != "e" {
		t.Fatalf("got %q, want %q", buf2, "e")
	}

	if _, err := c.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected EOF after exhausting messages, got %v", err)
	}
}

func TestConnWrite(t *testing.T) {
	fs := &fakeStream{}
	c := newConn(fs, nil)
	if _, err := c.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if len(fs.sent) != 1 || string(fs.sent[0]) != "hello" {
		t.Fatalf("sent = %v", fs.sent)
	}
}
