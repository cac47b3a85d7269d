package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/dbx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type sqlDB interface {
	dbx.DBTX
}

// SQLiteDSN returns a DSN for the sqlite file at path. Writers from other
// processes are waited on for up to five seconds instead of failing with
// SQLITE_BUSY straight away.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

// isBusy reports whether err is sqlite giving up on a lock held by another
// connection. The write is retried like any other lost race.
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_BUSY
}

type queries struct {
	get    string
	upsert string
	insert string
	update string
	delete string
}

var sqliteQueries = queries{
	get: `SELECT value, version FROM kv WHERE key = ?`,
	upsert: `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = kv.version + 1`,
	insert: `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
	update: `UPDATE kv SET value = ?, version = version + 1 WHERE key = ? AND version = ?`,
	delete: `DELETE FROM kv WHERE key = ?`,
}

var postgresQueries = queries{
	get: `SELECT value, version FROM kv WHERE key = $1`,
	upsert: `
		INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, version = kv.version + 1`,
	insert: `INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
	update: `UPDATE kv SET value = $1, version = version + 1 WHERE key = $2 AND version = $3`,
	delete: `DELETE FROM kv WHERE key = $1`,
}

// SQLRepository stores pairs in the kv table created by the migrations
// package. The version is an integer column bumped on every write.
type SQLRepository struct {
	db sqlDB
	q  queries
}

func NewSQLiteRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func NewPostgresRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, string, error) {
	var value []byte
	var version int64
	err := r.db.QueryRowContext(ctx, r.q.get, key).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, strconv.FormatInt(version, 10), nil
}

func (r *SQLRepository) Put(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.q.upsert, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) PutIf(ctx context.Context, key string, value []byte, version string) error {
	if version == "" {
		res, err := r.db.ExecContext(ctx, r.q.insert, key, value)
		if isBusy(err) {
			return fmt.Errorf("kv[%s] is locked: %w", key, common.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert kv[%s]: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to insert kv[%s]: %w", key, err)
		}
		if n == 0 {
			return fmt.Errorf("kv[%s] already exists: %w", key, common.ErrConflict)
		}
		return nil
	}

	want, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return fmt.Errorf("kv[%s] version %q: %w", key, version, common.ErrConflict)
	}

	res, err := r.db.ExecContext(ctx, r.q.update, value, key, want)
	if isBusy(err) {
		return fmt.Errorf("kv[%s] is locked: %w", key, common.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update kv[%s]: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update kv[%s]: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("kv[%s] is no longer at version %d: %w", key, want, common.ErrConflict)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.delete, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}
