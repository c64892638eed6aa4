package image_generator

import (
	"context"
	"errors"
)

var ErrEmptyImageURL = errors.New("image generation returned no image URL")

type Generator interface {
	// Generate requests exactly one image and returns its URL.
	Generate(ctx context.Context, prompt string) (string, error)
}
