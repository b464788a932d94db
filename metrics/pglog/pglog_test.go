package pglog

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/bobg/adbsync/metrics"
)

const connVar = "ADBSYNC_PG_TESTING_CONN"

func withStore(t *testing.T, f func(context.Context, *Store)) {
	t.Helper()
	connstr := os.Getenv(connVar)
	if connstr == "" {
		t.Skipf("to run %s, set %s to a valid Postgresql connection string", t.Name(), connVar)
	}

	db, err := sql.Open("postgres", connstr)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	f(ctx, s)
}

func TestRecordAndHistory(t *testing.T) {
	withStore(t, func(ctx context.Context, s *Store) {
		at := time.Unix(1700000000, 0)
		rec := metrics.TransferRecord{
			Op: "push", Src: "/l/f", Dst: "/r/f",
			Bytes: 2048, RateMBps: 3.2, At: at, ConfigVersion: "deadbeef",
		}
		if err := s.RecordTransfer(ctx, rec); err != nil {
			t.Fatal(err)
		}

		hist, err := s.History(ctx, "/r/f")
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) == 0 {
			t.Fatal("expected at least one history record")
		}
		last := hist[len(hist)-1]
		if last.ConfigVersion != rec.ConfigVersion || last.Bytes != rec.Bytes {
			t.Errorf("got %+v, want a record matching %+v", last, rec)
		}
	})
}
