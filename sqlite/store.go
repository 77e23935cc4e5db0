// Package sqlite records self-evaluation checks in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fwojciec/selfeval"
	_ "modernc.org/sqlite"
)

// Schema creates the checks table.
const Schema = `
CREATE TABLE IF NOT EXISTS checks
(
    id         INTEGER PRIMARY KEY,
    checked_at INTEGER NOT NULL,
    model      TEXT NOT NULL,
    question   TEXT NOT NULL,
    candidate  TEXT NOT NULL,
    verdict    TEXT NOT NULL,
    passed     INTEGER NOT NULL,
    message    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS checks_checked_at ON checks (checked_at);`

// Compile-time interface verification.
var _ selfeval.CheckStore = (*Store)(nil)

// Store persists CheckRecords.
type Store struct {
	db *sql.DB
}

// Open opens the database at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dsn, err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts rec and sets its ID. A zero CheckedAt is set to now.
func (s *Store) Record(ctx context.Context, rec *selfeval.CheckRecord) error {
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now()
	}

	const insertCheck = `
INSERT INTO checks (checked_at, model, question, candidate, verdict, passed, message)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

	row := s.db.QueryRowContext(ctx, insertCheck,
		rec.CheckedAt.UnixNano(),
		rec.Model,
		rec.Question,
		rec.Candidate,
		string(rec.Verdict),
		rec.Passed,
		rec.Message,
	)
	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]selfeval.CheckRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	const listChecks = `
SELECT id, checked_at, model, question, candidate, verdict, passed, message
FROM checks
ORDER BY checked_at DESC, id DESC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, listChecks, limit)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var records []selfeval.CheckRecord
	for rows.Next() {
		var rec selfeval.CheckRecord
		var checkedAt int64
		var verdict string
		if err := rows.Scan(
			&rec.ID,
			&checkedAt,
			&rec.Model,
			&rec.Question,
			&rec.Candidate,
			&verdict,
			&rec.Passed,
			&rec.Message,
		); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		rec.CheckedAt = time.Unix(0, checkedAt)
		rec.Verdict = selfeval.Verdict(verdict)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
