package image_generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

type openAIGenerator struct {
	client  *openai.Client
	model   string
	size    string
	quality string
	log     zerolog.Logger
}

type Config struct {
	APIKey  string
	BaseURL string
	// Model, Size and Quality default to dall-e-3, 1024x1024 and standard.
	Model   string
	Size    string
	Quality string
	Logger  zerolog.Logger
}

func New(cfg Config) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	gen := &openAIGenerator{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		size:    cfg.Size,
		quality: cfg.Quality,
		log:     cfg.Logger,
	}

	if gen.model == "" {
		gen.model = openai.CreateImageModelDallE3
	}

	if gen.size == "" {
		gen.size = openai.CreateImageSize1024x1024
	}

	if gen.quality == "" {
		gen.quality = openai.CreateImageQualityStandard
	}

	return gen, nil
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.New("missing prompt")
	}

	response, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           g.size,
		Quality:        g.quality,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		g.log.Error().Err(err).Str("model", g.model).Str("size", g.size).Msg("Image generation request failed")

		return "", fmt.Errorf("create image: %w", err)
	}

	if len(response.Data) == 0 || response.Data[0].URL == "" {
		g.log.Error().Str("model", g.model).Int("images", len(response.Data)).Msg("Image generation returned no URL")

		return "", ErrEmptyImageURL
	}

	return response.Data[0].URL, nil
}
