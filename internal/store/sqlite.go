package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS world_snapshots (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	size       INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps snapshots as rows of the world_snapshots table.
type SQLiteStore struct {
	db *sql.DB
}

var _ SnapshotStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path and creates the table if needed.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "open sqlite db %s", path)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, eris.Wrapf(err, "ping sqlite db %s", path)
	}
	if _, err = db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "create world_snapshots table")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO world_snapshots (name, data, size, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET data = excluded.data, size = excluded.size, updated_at = excluded.updated_at`,
		name, data, len(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return s.wrap(err, "put snapshot %s", name)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM world_snapshots WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, s.wrap(err, "get snapshot %s", name)
	}
	return data, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM world_snapshots WHERE name = ?`, name)
	if err != nil {
		return s.wrap(err, "delete snapshot %s", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.wrap(err, "delete snapshot %s", name)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, size, updated_at FROM world_snapshots ORDER BY name`)
	if err != nil {
		return nil, s.wrap(err, "list snapshots")
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var (
			info    Info
			updated int64
		)
		if err = rows.Scan(&info.Name, &info.Size, &updated); err != nil {
			return nil, s.wrap(err, "scan snapshot row")
		}
		info.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, info)
	}
	if err = rows.Err(); err != nil {
		return nil, s.wrap(err, "list snapshots")
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return eris.Wrap(err, "close sqlite db")
	}
	return nil
}

func (s *SQLiteStore) wrap(err error, format string, args ...any) error {
	if strings.Contains(err.Error(), "sql: database is closed") {
		return ErrClosed
	}
	return eris.Wrapf(err, format, args...)
}
