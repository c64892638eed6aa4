package entities

import "time"

// DefaultModel is recorded when a request does not name a model.
const DefaultModel = "gpt-4o"

type ImageGeneration struct {
	ID        int64     `json:"id"`
	Prompt    string    `json:"prompt"`
	ImageURL  string    `json:"imageUrl"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// GenerationRequest is the validated input of one generation. It is never persisted.
type GenerationRequest struct {
	Prompt string `json:"prompt" validate:"required,min=3"`
	Model  string `json:"model,omitempty" validate:"max=50"`
}
