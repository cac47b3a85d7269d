package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestEmbeddedFiles(t *testing.T) {
	for _, dir := range []string{"sqlite", "postgres"} {
		entries, err := fs.ReadDir(Migrations, dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries, dir)
	}
}

func TestUp_SQLiteCreatesKVTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, Up(ctx, db, SQLite))
	// idempotent
	require.NoError(t, Up(ctx, db, SQLite))

	_, err = db.Exec(`INSERT INTO kv (key, value) VALUES ('k', x'01')`)
	require.NoError(t, err)

	var version int64
	require.NoError(t, db.QueryRow(`SELECT version FROM kv WHERE key = 'k'`).Scan(&version))
	assert.Equal(t, int64(1), version)
}

func TestUp_UnknownDialect(t *testing.T) {
	err := Up(context.Background(), nil, Dialect("oracle"))
	require.Error(t, err)
}

func TestUp_PostgresUsesSeam(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return errors.New("boom")
	}

	err := Up(context.Background(), nil, Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate postgres")
	assert.Equal(t, "postgres", gotDir)
}
