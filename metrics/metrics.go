// Package metrics records completed transfers to a durable audit log
// and answers "which config version was active at time T" queries
// against it. Two backends implement Recorder: pglog (Postgres) and
// sqlitelog (embedded Sqlite), grounded on the teacher's store/pg and
// store/sqlite3 packages.
package metrics

import (
	"context"
	"sort"
	"time"
)

// TransferRecord is one completed push/pull/sync transaction.
type TransferRecord struct {
	Op            string // "push", "pull", or "sync"; per-file rows: "send_small", "send_large", or "recv"
	Src, Dst      string
	Bytes         int64
	RateMBps      float64
	At            time.Time
	ConfigVersion string
}

// Recorder is the audit-log capability consumed by cmd/adbsync. A nil
// Recorder is never passed; callers use Discard when no audit backend
// is configured.
type Recorder interface {
	RecordTransfer(ctx context.Context, rec TransferRecord) error

	// History returns every recorded transfer whose destination is
	// dst, ordered by time, for FindConfigVersion and for manual
	// auditing.
	History(ctx context.Context, dst string) ([]TransferRecord, error)
}

type discard struct{}

// Discard is a Recorder that drops every record.
var Discard Recorder = discard{}

func (discard) RecordTransfer(context.Context, TransferRecord) error { return nil }
func (discard) History(context.Context, string) ([]TransferRecord, error) {
	return nil, nil
}

// FindConfigVersion returns the config version that produced the
// latest transfer to dst at or before at, the same "latest value not
// after a timestamp" search the teacher's bs.FindAnchor performs over
// anchor TimeRef pairs, applied here to transfer history instead of
// blob anchors.
func FindConfigVersion(records []TransferRecord, at time.Time) (string, bool) {
	// records must be sorted ascending by At, as History guarantees.
	index := sort.Search(len(records), func(n int) bool {
		return records[n].At.After(at)
	})
	if index == 0 {
		return "", false
	}
	return records[index-1].ConfigVersion, true
}
