package metrics

import (
	"testing"
	"time"
)

func TestFindConfigVersion(t *testing.T) {
	base := time.Unix(1000, 0)
	records := []TransferRecord{
		{At: base, ConfigVersion: "v1"},
		{At: base.Add(10 * time.Second), ConfigVersion: "v2"},
		{At: base.Add(20 * time.Second), ConfigVersion: "v3"},
	}

	if v, ok := FindConfigVersion(records, base.Add(-time.Second)); ok {
		t.Errorf("expected no match before first record, got %q", v)
	}
	if v, ok := FindConfigVersion(records, base.Add(5*time.Second)); !ok || v != "v1" {
		t.Errorf("got %q, %v, want v1, true", v, ok)
	}
	if v, ok := FindConfigVersion(records, base.Add(25*time.Second)); !ok || v != "v3" {
		t.Errorf("got %q, %v, want v3, true", v, ok)
	}
}

func TestDiscardRecorder(t *testing.T) {
	if err := Discard.RecordTransfer(nil, TransferRecord{}); err != nil {
		t.Fatal(err)
	}
	hist, err := Discard.History(nil, "/x")
	if err != nil || hist != nil {
		t.Fatalf("got %v, %v", hist, err)
	}
}
