package image_generations

import (
	"context"
	"database/sql"
	"errors"

	"image_generation_server/clock"
	"image_generation_server/databases"
	"image_generation_server/entities"
	"image_generation_server/repositories"
)

const insertGenerationQuery string = `
INSERT INTO image_generations (prompt, image_url, model, created_at) VALUES (?, ?, ?, ?) RETURNING id;
`

const getGenerationByIDQuery string = `
SELECT id, prompt, image_url, model, created_at FROM image_generations WHERE id = ?;
`

const getAllGenerationsQuery string = `
SELECT id, prompt, image_url, model, created_at FROM image_generations ORDER BY created_at ASC, id ASC;
`

const getRecentGenerationsQuery string = `
SELECT id, prompt, image_url, model, created_at FROM image_generations ORDER BY created_at DESC, id DESC LIMIT ?;
`

type sqlRepo struct {
	dbConn  *sql.DB
	clock   clock.Clock
	dialect databases.Dialect
}

type Config struct {
	DB *sql.DB
	// Dialect defaults to sqlite.
	Dialect databases.Dialect
	Clock   clock.Clock
}

func NewRepository(cfg *Config) (Repository, error) {
	if cfg == nil || cfg.DB == nil {
		return nil, errors.New("missing DB parameter")
	}

	dialect := cfg.Dialect
	if dialect == "" {
		dialect = databases.DialectSQLite
	}

	generationClock := cfg.Clock
	if generationClock == nil {
		generationClock = clock.NewClock()
	}

	newRepo := &sqlRepo{
		dbConn:  cfg.DB,
		clock:   generationClock,
		dialect: dialect,
	}

	return newRepo, nil
}

func (repo *sqlRepo) Create(ctx context.Context, generation *entities.ImageGeneration) (*entities.ImageGeneration, error) {
	if generation == nil {
		return nil, errors.New("missing generation")
	}

	created := *generation
	created.CreatedAt = repo.clock.Now()

	err := repo.dbConn.QueryRowContext(ctx, repo.dialect.Rebind(insertGenerationQuery),
		created.Prompt, created.ImageURL, created.Model, created.CreatedAt).Scan(&created.ID)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (repo *sqlRepo) GetByID(ctx context.Context, id int64) (*entities.ImageGeneration, error) {
	row := repo.dbConn.QueryRowContext(ctx, repo.dialect.Rebind(getGenerationByIDQuery), id)

	generation, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NewNotFoundError(entityName, id)
		}

		return nil, err
	}

	return generation, nil
}

func (repo *sqlRepo) GetAll(ctx context.Context) ([]*entities.ImageGeneration, error) {
	rows, err := repo.dbConn.QueryContext(ctx, getAllGenerationsQuery)
	if err != nil {
		return nil, err
	}

	return scanGenerations(rows)
}

func (repo *sqlRepo) GetRecent(ctx context.Context, limit int) ([]*entities.ImageGeneration, error) {
	if limit <= 0 {
		return []*entities.ImageGeneration{}, nil
	}

	rows, err := repo.dbConn.QueryContext(ctx, repo.dialect.Rebind(getRecentGenerationsQuery), limit)
	if err != nil {
		return nil, err
	}

	return scanGenerations(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (*entities.ImageGeneration, error) {
	var generation entities.ImageGeneration

	err := row.Scan(&generation.ID, &generation.Prompt, &generation.ImageURL, &generation.Model, &generation.CreatedAt)
	if err != nil {
		return nil, err
	}

	generation.CreatedAt = generation.CreatedAt.UTC()

	return &generation, nil
}

func scanGenerations(rows *sql.Rows) ([]*entities.ImageGeneration, error) {
	defer rows.Close()

	generations := make([]*entities.ImageGeneration, 0)

	for rows.Next() {
		generation, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}

		generations = append(generations, generation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return generations, nil
}
