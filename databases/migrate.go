package databases

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

type Migration struct {
	Name  string
	Query string
}

// VersionStore reads and records how many migrations a database has applied.
type VersionStore interface {
	CurrentVersion(ctx context.Context, db *sql.DB) (int, error)
	SetVersion(ctx context.Context, tx *sql.Tx, version int) error
}

// Migrate applies every migration past the current version, each in its own transaction.
func Migrate(ctx context.Context, db *sql.DB, versions VersionStore, migrations []Migration, log zerolog.Logger) error {
	currentMigration, err := versions.CurrentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	requiredMigration := len(migrations)

	log.Info().
		Int("current_version", currentMigration).
		Int("required_version", requiredMigration).
		Msg("Checking database schema")

	for migrationNum := currentMigration + 1; migrationNum <= requiredMigration; migrationNum++ {
		err = execMigration(ctx, db, versions, migrations, migrationNum, log)
		if err != nil {
			return fmt.Errorf("migration %d %q: %w", migrationNum, migrations[migrationNum-1].Name, err)
		}
	}

	return nil
}

func execMigration(ctx context.Context, db *sql.DB, versions VersionStore, migrations []Migration, migrationNum int, log zerolog.Logger) error {
	log.Info().Int("version", migrationNum).Str("name", migrations[migrationNum-1].Name).Msg("Running migration")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	//nolint
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, migrations[migrationNum-1].Query)
	if err != nil {
		return err
	}

	err = versions.SetVersion(ctx, tx, migrationNum)
	if err != nil {
		return err
	}

	return tx.Commit()
}
