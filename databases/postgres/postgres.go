package postgres

import (
	"context"
	"database/sql"
	"errors"

	"image_generation_server/databases"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

const createVersionTableIfNotExistsQuery string = `
CREATE TABLE IF NOT EXISTS schema_version (
version INTEGER NOT NULL
);`

const getCurrentMigration string = `SELECT COALESCE(MAX(version), 0) FROM schema_version;`
const clearCurrentMigration string = `DELETE FROM schema_version;`
const setCurrentMigration string = `INSERT INTO schema_version (version) VALUES ($1);`

const createGenerationTableIfNotExistsQuery string = `
CREATE TABLE IF NOT EXISTS image_generations (
id BIGSERIAL PRIMARY KEY,
prompt TEXT NOT NULL,
image_url TEXT NOT NULL,
model VARCHAR(50) NOT NULL DEFAULT 'gpt-4o',
created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createCreatedAtIndexIfNotExistsQuery string = `
CREATE INDEX IF NOT EXISTS generation_created_at_index
ON image_generations(created_at);
`

var migrations = []databases.Migration{
	{Name: "create generation table", Query: createGenerationTableIfNotExistsQuery},
	{Name: "add generation created_at index", Query: createCreatedAtIndexIfNotExistsQuery},
}

type Config struct {
	DatabaseURL string
	Logger      zerolog.Logger
}

func New(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("missing database URL")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()

		return nil, err
	}

	_, err = db.ExecContext(ctx, createVersionTableIfNotExistsQuery)
	if err != nil {
		db.Close()

		return nil, err
	}

	err = databases.Migrate(ctx, db, versionTable{}, migrations, cfg.Logger)
	if err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}

type versionTable struct{}

func (versionTable) CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var currentMigration int

	err := db.QueryRowContext(ctx, getCurrentMigration).Scan(&currentMigration)
	if err != nil {
		return 0, err
	}

	return currentMigration, nil
}

func (versionTable) SetVersion(ctx context.Context, tx *sql.Tx, version int) error {
	_, err := tx.ExecContext(ctx, clearCurrentMigration)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, setCurrentMigration, version)

	return err
}
