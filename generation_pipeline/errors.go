package generation_pipeline

import "fmt"

// GenerationError means the image model failed; nothing was stored.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate image: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StorageError means the image was generated but its record could not be stored.
// ImageURL is the generated image that has no record.
type StorageError struct {
	ImageURL string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store image generation: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
