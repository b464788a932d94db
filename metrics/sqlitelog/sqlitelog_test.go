package sqlitelog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/bobg/adbsync/metrics"
)

func withTestStore(t *testing.T, fn func(*Store)) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transfers.db")
	ctx := context.Background()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	fn(s)
}

func TestRecordAndHistory(t *testing.T) {
	withTestStore(t, func(s *Store) {
		ctx := context.Background()
		at := time.Unix(1700000000, 0)

		rec := metrics.TransferRecord{
			Op: "pull", Src: "/r/f", Dst: "/l/f",
			Bytes: 1024, RateMBps: 1.5, At: at, ConfigVersion: "abc123",
		}
		if err := s.RecordTransfer(ctx, rec); err != nil {
			t.Fatal(err)
		}

		hist, err := s.History(ctx, "/l/f")
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) != 1 {
			t.Fatalf("got %d records, want 1", len(hist))
		}
		got := hist[0]
		if got.Op != rec.Op || got.Bytes != rec.Bytes || got.ConfigVersion != rec.ConfigVersion {
			t.Errorf("got %+v, want %+v", got, rec)
		}
		if !got.At.Equal(at) {
			t.Errorf("at = %s, want %s", got.At, at)
		}
	})
}

func TestHistoryEmptyForUnknownDst(t *testing.T) {
	withTestStore(t, func(s *Store) {
		hist, err := s.History(context.Background(), "/nope")
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) != 0 {
			t.Errorf("got %d records, want 0", len(hist))
		}
	})
}
