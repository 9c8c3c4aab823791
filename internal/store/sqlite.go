// ABOUTME: SQLite backend for the entity store using modernc.org/sqlite
// ABOUTME: Replaces the whole collection inside one transaction per save

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores each entity as a JSON body keyed by its id, plus the
// id counter in a metadata table.
type SQLiteBackend[T Entity[T]] struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteBackend opens (creating if needed) the database at path.
// Parent directories are created if needed.
func NewSQLiteBackend[T Entity[T]](path string) (*SQLiteBackend[T], error) {
	logger := slog.Default().With("component", "store.sqlite")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: writes are already serialized by the store, and an
	// in-memory database only exists on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	b := &SQLiteBackend[T]{
		db:     db,
		path:   path,
		logger: logger,
	}

	if err := b.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite backend initialized", "path", path)
	return b, nil
}

// createSchema creates the tables if they don't exist
func (b *SQLiteBackend[T]) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entities (
			id   INTEGER PRIMARY KEY,
			body TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	_, err := b.db.Exec(schema)
	return err
}

// Load reads every entity ordered by id and the stored id counter.
func (b *SQLiteBackend[T]) Load(ctx context.Context) (Snapshot[T], error) {
	var snap Snapshot[T]

	rows, err := b.db.QueryContext(ctx, `SELECT id, body FROM entities ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var body string
		if err := rows.Scan(&id, &body); err != nil {
			return snap, fmt.Errorf("scanning entity: %w", err)
		}

		var item T
		if err := json.Unmarshal([]byte(body), &item); err != nil {
			return snap, fmt.Errorf("decoding entity %d: %w", id, err)
		}
		if item.EntityID() != id {
			return snap, fmt.Errorf("entity row %d holds id %d", id, item.EntityID())
		}
		snap.Items = append(snap.Items, item)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterating entities: %w", err)
	}

	var raw string
	err = b.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'next_id'`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return snap, fmt.Errorf("reading next_id: %w", err)
	default:
		snap.NextID, err = strconv.Atoi(raw)
		if err != nil {
			return snap, fmt.Errorf("parsing next_id %q: %w", raw, err)
		}
	}

	return snap, nil
}

// Save replaces the stored collection in a single transaction.
func (b *SQLiteBackend[T]) Save(ctx context.Context, snap Snapshot[T]) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("clearing entities: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entities (id, body) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range snap.Items {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding entity %d: %w", item.EntityID(), err)
		}
		if _, err := stmt.ExecContext(ctx, item.EntityID(), string(body)); err != nil {
			return fmt.Errorf("inserting entity %d: %w", item.EntityID(), err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO store_meta (key, value) VALUES ('next_id', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, strconv.Itoa(snap.NextID))
	if err != nil {
		return fmt.Errorf("writing next_id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Location returns the database path.
func (b *SQLiteBackend[T]) Location() string {
	return b.path
}

// Close closes the database.
func (b *SQLiteBackend[T]) Close() error {
	return b.db.Close()
}
