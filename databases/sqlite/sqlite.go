package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"image_generation_server/databases"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const dbFile string = "image_generations.sqlite"

const getCurrentMigration string = `PRAGMA user_version;`
const setCurrentMigration string = `PRAGMA user_version = ?;`

const createGenerationTableIfNotExistsQuery string = `
CREATE TABLE IF NOT EXISTS image_generations (
id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
prompt TEXT NOT NULL,
image_url TEXT NOT NULL,
model VARCHAR(50) NOT NULL DEFAULT 'gpt-4o',
created_at DATETIME NOT NULL
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
	// Filename defaults to image_generations.sqlite in the working directory.
	Filename string
	Logger   zerolog.Logger
}

func New(ctx context.Context, cfg Config) (*sql.DB, error) {
	filename := cfg.Filename
	if filename == "" {
		var err error

		filename, err = DBFilename()
		if err != nil {
			return nil, err
		}
	}

	err := touchDBFile(filename)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dataSourceName(filename))
	if err != nil {
		return nil, err
	}

	err = databases.Migrate(ctx, db, userVersion{}, migrations, cfg.Logger)
	if err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}

// dataSourceName waits on locks instead of failing concurrent writers immediately.
func dataSourceName(filename string) string {
	return "file:" + filename + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
}

type userVersion struct{}

func (userVersion) CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var currentMigration int

	err := db.QueryRowContext(ctx, getCurrentMigration).Scan(&currentMigration)
	if err != nil {
		return 0, err
	}

	return currentMigration, nil
}

func (userVersion) SetVersion(ctx context.Context, tx *sql.Tx, version int) error {
	// PRAGMA statements do not accept bound parameters
	setQuery := strings.Replace(setCurrentMigration, "?", strconv.Itoa(version), 1)

	_, err := tx.ExecContext(ctx, setQuery)

	return err
}

func DBFilename() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, dbFile), nil
}

func touchDBFile(filename string) error {
	_, err := os.Stat(filename)
	if errors.Is(err, os.ErrNotExist) {
		file, createErr := os.Create(filename)
		if createErr != nil {
			return createErr
		}

		closeErr := file.Close()
		if closeErr != nil {
			return closeErr
		}
	}

	return nil
}
