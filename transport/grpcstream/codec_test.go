package grpcstream

import "testing"

func TestRawCodecRoundtrip(t *testing.T) {
	c := rawCodec{}
	want := []byte("hello, frame")
	data, err := c.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	var got []byte
	if err := c.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRawCodecRejectsOtherTypes(t *testing.T) {
	c := rawCodec{}
	if _, err := c.Marshal(42); err == nil {
		t.Error("expected an error marshaling a non-[]byte value")
	}
	var x int
	if err := c.Unmarshal([]byte("x"), &x); err == nil {
		t.Error("expected an error unmarshaling into a non-*[]byte target")
	}
}
