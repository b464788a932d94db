package transport

import (
	"context"
	"io"
	"testing"
)

type fakeConn struct{}

func (fakeConn) Read([]byte) (int, error)  { return 0, io.EOF }
func (fakeConn) Write(p []byte) (int, error) { return len(p), nil }
func (fakeConn) Close() error              { return nil }

func TestRegisterAndDial(t *testing.T) {
	Register("fake-test-kind", func(ctx context.Context, conf map[string]interface{}) (io.ReadWriteCloser, error) {
		return fakeConn{}, nil
	})
	conn, err := Dial(context.Background(), "fake-test-kind", nil)
	if err != nil {
		t.Fatal(err)
	}
	if conn == nil {
		t.Fatal("expected a non-nil conn")
	}
}

func TestDialUnknownKind(t *testing.T) {
	if _, err := Dial(context.Background(), "no-such-kind", nil); err == nil {
		t.Error("expected an error for an unregistered transport kind")
	}
}

func TestTCPRequiresAddr(t *testing.T) {
	if _, err := Dial(context.Background(), "tcp", map[string]interface{}{}); err == nil {
		t.Error("expected an error when addr is missing")
	}
}
