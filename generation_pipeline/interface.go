package generation_pipeline

import (
	"context"

	"image_generation_server/entities"
)

type Pipeline interface {
	// Generate validates the request, enhances its prompt, generates one image and
	// stores the record. Errors are *validation.ValidationError, *GenerationError
	// or *StorageError.
	Generate(ctx context.Context, req *entities.GenerationRequest) (*entities.ImageGeneration, error)
}
