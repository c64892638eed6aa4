package http_server

import (
	"errors"
	"net/http"
	"strconv"

	"image_generation_server/repositories"
	"image_generation_server/validation"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

func (s *serverImpl) generateImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondMessage(c, http.StatusRequestEntityTooLarge, "Request body is too large")
			return
		}

		respondError(c, &validation.ValidationError{Fields: []validation.FieldError{
			{Field: "body", Message: "Request body could not be read"},
		}}, "")
		return
	}

	req, err := validation.DecodeGenerationRequest(body)
	if err != nil {
		respondError(c, err, "")
		return
	}

	generation, err := s.pipeline.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to generate image")
		return
	}

	c.JSON(http.StatusOK, successResponse{
		Success: true,
		Message: "Image generated successfully",
		Data:    generation,
	})
}

func (s *serverImpl) listImageGenerations(c *gin.Context) {
	generations, err := s.generationRepo.GetAll(c.Request.Context())
	if err != nil {
		requestLog(c).Error().Err(err).Msg("Failed to list image generations")
		respondError(c, err, "Failed to fetch image generations")
		return
	}

	respondData(c, generations)
}

func (s *serverImpl) recentImageGenerations(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil || limit < 1 {
		respondMessage(c, http.StatusBadRequest, "Limit must be a positive integer")
		return
	}

	if limit > s.maxRecentLimit {
		limit = s.maxRecentLimit
	}

	generations, err := s.generationRepo.GetRecent(c.Request.Context(), limit)
	if err != nil {
		requestLog(c).Error().Err(err).Int("limit", limit).Msg("Failed to list recent image generations")
		respondError(c, err, "Failed to fetch recent image generations")
		return
	}

	respondData(c, generations)
}

func (s *serverImpl) getImageGeneration(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "ID must be an integer")
		return
	}

	generation, err := s.generationRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, &repositories.NotFoundError{}) {
			requestLog(c).Error().Err(err).Int64("id", id).Msg("Failed to fetch image generation")
		}

		respondError(c, err, "Failed to fetch image generation")
		return
	}

	respondData(c, generation)
}

func (s *serverImpl) health(c *gin.Context) {
	respondMessage(c, http.StatusOK, "ok")
}

func (s *serverImpl) notFound(c *gin.Context) {
	respondMessage(c, http.StatusNotFound, "Not found")
}
