// Package sqlitelog is an embedded-Sqlite metrics.Recorder, for
// single-machine use where a Postgres server is overkill. Grounded on
// store/sqlite3/sqlite3.go's schema/query shape, including its
// convention of storing timestamps as RFC3339Nano text and reading
// result sets through sqlutil.ForQueryRows.
package sqlitelog

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/bobg/sqlutil"

	"github.com/bobg/adbsync/metrics"
)

var _ metrics.Recorder = &Store{}

// Store records transfers to a `transfers` table in a Sqlite file.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
const Schema = `
CREATE TABLE IF NOT EXISTS transfers (
  op text NOT NULL,
  src text NOT NULL,
  dst text NOT NULL,
  bytes integer NOT NULL,
  rate_mbps real NOT NULL,
  at text NOT NULL,
  config_version text NOT NULL
);

CREATE INDEX IF NOT EXISTS transfers_dst_at_idx ON transfers (dst, at);
`

// New wraps db, creating the transfers table if it doesn't exist.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating transfers table")
}

// Open opens (creating if needed) the Sqlite file at path and calls
// New.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite3 database")
	}
	return New(ctx, db)
}

// RecordTransfer implements metrics.Recorder.
func (s *Store) RecordTransfer(ctx context.Context, rec metrics.TransferRecord) error {
	const q = `
INSERT INTO transfers (op, src, dst, bytes, rate_mbps, at, config_version)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := s.db.ExecContext(ctx, q,
		rec.Op, rec.Src, rec.Dst, rec.Bytes, rec.RateMBps,
		rec.At.UTC().Format(time.RFC3339Nano), rec.ConfigVersion)
	return errors.Wrap(err, "inserting transfer record")
}

// History implements metrics.Recorder.
func (s *Store) History(ctx context.Context, dst string) ([]metrics.TransferRecord, error) {
	const q = `
SELECT op, src, dst, bytes, rate_mbps, at, config_version
FROM transfers
WHERE dst = $1
ORDER BY at
`
	var out []metrics.TransferRecord
	err := sqlutil.ForQueryRows(ctx, s.db, q, dst, func(op, src, dstCol string, bytes int64, rateMBps float64, atstr, configVersion string) error {
		at, err := time.Parse(time.RFC3339Nano, atstr)
		if err != nil {
			return errors.Wrapf(err, "parsing time %s", atstr)
		}
		out = append(out, metrics.TransferRecord{
			Op: op, Src: src, Dst: dstCol, Bytes: bytes, RateMBps: rateMBps,
			At: at, ConfigVersion: configVersion,
		})
		return nil
	})
	return out, errors.Wrap(err, "querying transfer history")
}
