package databases_test

import (
	"testing"

	"image_generation_server/databases"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	query := `INSERT INTO image_generations (prompt, image_url, model, created_at) VALUES (?, ?, ?, ?) RETURNING id;`

	assert.Equal(t, query, databases.DialectSQLite.Rebind(query))
	assert.Equal(t,
		`INSERT INTO image_generations (prompt, image_url, model, created_at) VALUES ($1, $2, $3, $4) RETURNING id;`,
		databases.DialectPostgres.Rebind(query))
}

func TestDialect_RebindWithoutPlaceholders(t *testing.T) {
	query := `SELECT id FROM image_generations;`

	assert.Equal(t, query, databases.DialectPostgres.Rebind(query))
}
