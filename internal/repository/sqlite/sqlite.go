package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"schooldb/internal/domain"
	"schooldb/internal/repository"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository on an in-memory SQLite
// database. Durability comes from Snapshot, not from a file on disk.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// openMemory opens an empty in-memory database. The pool is pinned to one
// connection that never expires, otherwise the database would vanish.
func openMemory(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// New creates a fresh store: tables are created and the default classes seeded
func New(ctx context.Context) (*Repository, error) {
	db, err := openMemory(ctx)
	if err != nil {
		return nil, err
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := repo.seed(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return repo, nil
}

// Open rebuilds a store from bytes produced by Snapshot (or any SQLite
// database file with the same tables). Errors wrap domain.ErrMalformedSnapshot.
func Open(ctx context.Context, data []byte) (*Repository, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty snapshot", domain.ErrMalformedSnapshot)
	}

	db, err := openMemory(ctx)
	if err != nil {
		return nil, err
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.restore(ctx, data); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSnapshot, err)
	}

	return repo, nil
}

func (r *Repository) restore(ctx context.Context, data []byte) error {
	data = legacyJournal(data)

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	err = conn.Raw(func(driverConn any) error {
		d, ok := driverConn.(interface{ Deserialize([]byte) error })
		if !ok {
			return errors.New("driver cannot deserialize")
		}
		return d.Deserialize(data)
	})
	conn.Close()
	if err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	var check string
	if err := r.db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&check); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if check != "ok" {
		return fmt.Errorf("integrity check: %s", check)
	}

	if err := r.requireTables(ctx); err != nil {
		return err
	}

	return r.migrate(ctx)
}

// legacyJournal rewrites the WAL marker in a database header to the rollback
// journal value. A WAL-mode file cannot be opened from memory otherwise.
func legacyJournal(data []byte) []byte {
	if len(data) < 20 || data[18] != 2 || data[19] != 2 {
		return data
	}
	out := make([]byte, len(data))
	copy(out, data)
	out[18], out[19] = 1, 1
	return out
}

func (r *Repository) requireTables(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, t := range Tables {
		if !present[t.Name] {
			missing = append(missing, t.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *Repository) migrate(ctx context.Context) error {
	var b strings.Builder
	for _, t := range Tables {
		b.WriteString(t.DDL)
		b.WriteString("\n")
	}
	b.WriteString(indexes)

	_, err := r.db.ExecContext(ctx, b.String())
	return err
}

// seed inserts the default classes when the classes table is empty
func (r *Repository) seed(ctx context.Context) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range DefaultClasses {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO classes (id, name, studentCount) VALUES (?, ?, 0)`, c.ID, c.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot serializes the entire database into one blob
func (r *Repository) Snapshot(ctx context.Context) ([]byte, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	var data []byte
	err = conn.Raw(func(driverConn any) error {
		s, ok := driverConn.(interface{ Serialize() ([]byte, error) })
		if !ok {
			return errors.New("driver cannot serialize")
		}
		var err error
		data, err = s.Serialize()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize database: %w", err)
	}
	return data, nil
}

// ExecScript runs a reconstruction script in a single transaction
func (r *Repository) ExecScript(ctx context.Context, script string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, script)
		return err
	})
	return wrapErr("execute script", err)
}

// Close releases the database. The in-memory state is lost.
func (r *Repository) Close() error {
	return r.db.Close()
}

// withTx runs fn inside a transaction and commits when it returns nil.
// fn must only use tx: the pool has a single connection.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// wrapErr annotates err with the failed operation. SQLite constraint
// failures are marked with domain.ErrConstraint.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrConstraint) {
		return err
	}
	var se *msqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrConstraint, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
