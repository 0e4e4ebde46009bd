package store

import (
	"context"
	"database/sql"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
)

// duckdbStore implements Store on a single-file DuckDB database holding one
// kv table. An empty path opens an in-memory database.
type duckdbStore struct {
	db *sql.DB
}

func newDuckDBStore(path string) (*duckdbStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open DuckDB")
	}

	// DuckDB works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key VARCHAR PRIMARY KEY, value BLOB NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create kv table")
	}

	return &duckdbStore{db: db}, nil
}

// Get implements Store.
func (s *duckdbStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key %q", key)
	}
	return value, nil
}

// Set implements Store.
func (s *duckdbStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, key, value)
	return errors.Wrapf(err, "failed to write key %q", key)
}

// Delete implements Store.
func (s *duckdbStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return errors.Wrapf(err, "failed to delete key %q", key)
}

// Close implements Store.
func (s *duckdbStore) Close() error {
	return s.db.Close()
}
