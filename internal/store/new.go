// Package store keeps finished summaries in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type implStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. ":memory:" is accepted.
func Open(ctx context.Context, path string) (Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &implStore{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS summaries (
		id         TEXT PRIMARY KEY,
		video_id   TEXT NOT NULL,
		title      TEXT,
		content    TEXT,
		language   TEXT,
		mode       TEXT,
		source     TEXT,
		model      TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_created ON summaries (created_at DESC);`)
	return err
}

func (s *implStore) Close() error {
	return s.db.Close()
}
