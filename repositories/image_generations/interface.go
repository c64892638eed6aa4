package image_generations

import (
	"context"

	"image_generation_server/entities"
)

const entityName = "image generation"

type Repository interface {
	// Create stores the generation and fills in its ID and CreatedAt.
	Create(ctx context.Context, generation *entities.ImageGeneration) (*entities.ImageGeneration, error)
	GetByID(ctx context.Context, id int64) (*entities.ImageGeneration, error)
	// GetAll returns every generation in insertion order.
	GetAll(ctx context.Context) ([]*entities.ImageGeneration, error)
	// GetRecent returns at most limit generations, newest first.
	GetRecent(ctx context.Context, limit int) ([]*entities.ImageGeneration, error)
}
