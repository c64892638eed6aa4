package postgres_test

import (
	"context"
	"os"
	"testing"

	"image_generation_server/databases/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingDatabaseURL(t *testing.T) {
	_, err := postgres.New(context.Background(), postgres.Config{})
	assert.EqualError(t, err, "missing database URL")
}

func TestNew_MigratesAndIsIdempotent(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		db, err := postgres.New(ctx, postgres.Config{DatabaseURL: databaseURL})
		require.NoError(t, err)

		var version int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version;`).Scan(&version))
		assert.Equal(t, 2, version)

		var rows int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version;`).Scan(&rows))
		assert.Equal(t, 1, rows)

		require.NoError(t, db.Close())
	}
}
