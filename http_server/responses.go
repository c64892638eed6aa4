package http_server

import (
	"errors"
	"net/http"

	"image_generation_server/generation_pipeline"
	"image_generation_server/repositories"
	"image_generation_server/validation"

	"github.com/gin-gonic/gin"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type messageResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, messageResponse{Success: status < http.StatusBadRequest, Message: message})
}

// respondError maps pipeline and repository errors to status codes. Causes are
// logged by the caller and never sent to the client.
func respondError(c *gin.Context, err error, fallbackMessage string) {
	var validationErr *validation.ValidationError
	var generationErr *generation_pipeline.GenerationError
	var storageErr *generation_pipeline.StorageError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, messageResponse{
			Message: validationErr.Message(),
			Errors:  validationErr.Fields,
		})
	case errors.As(err, &generationErr):
		respondMessage(c, http.StatusInternalServerError, "Failed to generate image")
	case errors.As(err, &storageErr):
		respondMessage(c, http.StatusInternalServerError, "Failed to save generated image")
	case errors.Is(err, &repositories.NotFoundError{}):
		respondMessage(c, http.StatusNotFound, "Image generation not found")
	default:
		respondMessage(c, http.StatusInternalServerError, fallbackMessage)
	}
}
