// Package pglog is a Postgres-backed metrics.Recorder, for fleet-wide
// transfer auditing across many hosts sharing one database. Grounded
// on store/pg/pg.go's database/sql + lib/pq connection and schema
// setup.
package pglog

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bobg/adbsync/metrics"
)

var _ metrics.Recorder = &Store{}

// Store records transfers to a `transfers` table.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes. If the table already exists it
// must have these columns.
const Schema = `
CREATE TABLE IF NOT EXISTS transfers (
  op text NOT NULL,
  src text NOT NULL,
  dst text NOT NULL,
  bytes bigint NOT NULL,
  rate_mbps double precision NOT NULL,
  at timestamp with time zone NOT NULL,
  config_version text NOT NULL
);

CREATE INDEX IF NOT EXISTS transfers_dst_at_idx ON transfers (dst, at);
`

// New wraps db, creating the transfers table if it doesn't exist.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating transfers table")
}

// Open dials conn (a libpq connection string) and calls New.
func Open(ctx context.Context, conn string) (*Store, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres connection")
	}
	return New(ctx, db)
}

// RecordTransfer implements metrics.Recorder.
func (s *Store) RecordTransfer(ctx context.Context, rec metrics.TransferRecord) error {
	const q = `
INSERT INTO transfers (op, src, dst, bytes, rate_mbps, at, config_version)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := s.db.ExecContext(ctx, q, rec.Op, rec.Src, rec.Dst, rec.Bytes, rec.RateMBps, rec.At, rec.ConfigVersion)
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
	rows, err := s.db.QueryContext(ctx, q, dst)
	if err != nil {
		return nil, errors.Wrap(err, "querying transfer history")
	}
	defer rows.Close()

	var out []metrics.TransferRecord
	for rows.Next() {
		var rec metrics.TransferRecord
		if err := rows.Scan(&rec.Op, &rec.Src, &rec.Dst, &rec.Bytes, &rec.RateMBps, &rec.At, &rec.ConfigVersion); err != nil {
			return nil, errors.Wrap(err, "scanning transfer row")
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterating transfer rows")
}
