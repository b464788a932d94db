package tree

import (
	"context"
	"testing"

	"github.com/bobg/adbsync/session"
)

func TestWalkRemoteStream(t *testing.T) {
	fs := &fakeListSession{entries: map[string][]session.DentEntry{
		"/r": {
			{Mode: 0o040755, Name: "sub"},
			{Mode: 0o100644, Size: 5, Time: 10, Name: "f.txt"},
		},
		"/r/sub": {
			{Mode: 0o100644, Size: 1, Time: 20, Name: "g.txt"},
		},
	}}

	ch, wait, err := WalkRemoteStream(context.Background(), fs, "/r", "/l")
	if err != nil {
		t.Fatal(err)
	}

	var items []CopyItem
	for item := range ch {
		items = append(items, item)
	}
	if err := wait(); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
}
