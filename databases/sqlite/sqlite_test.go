package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"image_generation_server/databases/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MigratesFreshDatabase(t *testing.T) {
	ctx := context.Background()
	filename := filepath.Join(t.TempDir(), "test.sqlite")

	db, err := sqlite.New(ctx, sqlite.Config{Filename: filename})
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version))
	assert.Equal(t, 2, version)

	var tableName string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'image_generations';`).Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "image_generations", tableName)
}

func TestNew_ReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	filename := filepath.Join(t.TempDir(), "test.sqlite")

	db, err := sqlite.New(ctx, sqlite.Config{Filename: filename})
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO image_generations (prompt, image_url, model, created_at) VALUES ('a cat', 'https://img/example.png', 'gpt-4o', '2024-05-13 10:00:00+00:00');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.New(ctx, sqlite.Config{Filename: filename})
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM image_generations;`).Scan(&count))
	assert.Equal(t, 1, count)
}
