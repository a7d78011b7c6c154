package slot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// File is a Store backed by its own SQLite database file
type File struct {
	db *sql.DB
}

// OpenFile opens (or creates) the slot database at path
func OpenFile(ctx context.Context, path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create slot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open slot database: %w", err)
	}

	f := &File{db: db}
	if err := f.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate slot database: %w", err)
	}
	return f, nil
}

func (f *File) migrate(ctx context.Context) error {
	_, err := f.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updatedAt TEXT NOT NULL
	);
	`)
	return err
}

// Get returns the value under key
func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := f.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the value under key
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updatedAt) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = excluded.updatedAt
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database
func (f *File) Close() error {
	return f.db.Close()
}
