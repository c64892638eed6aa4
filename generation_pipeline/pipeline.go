package generation_pipeline

import (
	"context"
	"errors"
	"time"

	"image_generation_server/entities"
	"image_generation_server/image_generator"
	"image_generation_server/metrics"
	"image_generation_server/prompt_enhancer"
	"image_generation_server/repositories/image_generations"
	"image_generation_server/validation"

	"github.com/rs/zerolog"
)

type pipelineImpl struct {
	enhancer       prompt_enhancer.Enhancer
	imageGenerator image_generator.Generator
	generationRepo image_generations.Repository
	metrics        *metrics.Metrics
	log            zerolog.Logger
}

type Config struct {
	PromptEnhancer      prompt_enhancer.Enhancer
	ImageGenerator      image_generator.Generator
	ImageGenerationRepo image_generations.Repository
	// Metrics is optional.
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

func New(cfg Config) (Pipeline, error) {
	if cfg.PromptEnhancer == nil {
		return nil, errors.New("missing prompt enhancer")
	}

	if cfg.ImageGenerator == nil {
		return nil, errors.New("missing image generator")
	}

	if cfg.ImageGenerationRepo == nil {
		return nil, errors.New("missing image generation repository")
	}

	return &pipelineImpl{
		enhancer:       cfg.PromptEnhancer,
		imageGenerator: cfg.ImageGenerator,
		generationRepo: cfg.ImageGenerationRepo,
		metrics:        cfg.Metrics,
		log:            cfg.Logger,
	}, nil
}

func (p *pipelineImpl) Generate(ctx context.Context, req *entities.GenerationRequest) (*entities.ImageGeneration, error) {
	var request entities.GenerationRequest
	if req != nil {
		request = *req
	}

	err := validation.ValidateGenerationRequest(&request)
	if err != nil {
		p.metrics.ObserveOutcome(metrics.OutcomeValidationError)

		return nil, err
	}

	log := p.log.With().Str("model", request.Model).Logger()

	enhanced := p.enhancer.Enhance(ctx, request.Prompt)
	if enhanced.FellBack {
		p.metrics.ObserveEnhancementFallback()
		log.Warn().Err(enhanced.Err).Msg("Generating from original prompt")
	} else {
		log.Debug().Str("enhanced_prompt", enhanced.Prompt).Msg("Prompt enhanced")
	}

	started := time.Now()

	imageURL, err := p.imageGenerator.Generate(ctx, enhanced.Prompt)

	p.metrics.ObserveGenerationDuration(time.Since(started))

	if err != nil {
		p.metrics.ObserveOutcome(metrics.OutcomeGenerationError)
		log.Error().Err(err).Msg("Image generation failed")

		return nil, &GenerationError{Err: err}
	}

	if imageURL == "" {
		p.metrics.ObserveOutcome(metrics.OutcomeGenerationError)
		log.Error().Msg("Image generation returned no URL")

		return nil, &GenerationError{Err: image_generator.ErrEmptyImageURL}
	}

	generation, err := p.generationRepo.Create(ctx, &entities.ImageGeneration{
		Prompt:   request.Prompt,
		ImageURL: imageURL,
		Model:    request.Model,
	})
	if err != nil {
		p.metrics.ObserveOutcome(metrics.OutcomeStorageError)
		// the image exists at the provider but has no record; log it so it can be recovered
		log.Error().Err(err).Str("image_url", imageURL).Msg("Failed to store image generation")

		return nil, &StorageError{ImageURL: imageURL, Err: err}
	}

	p.metrics.ObserveOutcome(metrics.OutcomeSuccess)
	log.Info().Int64("id", generation.ID).Bool("enhanced", !enhanced.FellBack).Msg("Image generated")

	return generation, nil
}
