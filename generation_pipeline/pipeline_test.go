package generation_pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"image_generation_server/clock"
	"image_generation_server/entities"
	"image_generation_server/generation_pipeline"
	"image_generation_server/image_generator"
	"image_generation_server/metrics"
	"image_generation_server/prompt_enhancer"
	"image_generation_server/repositories/image_generations"
	"image_generation_server/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyEnhancer struct {
	calls    []string
	enhanced string
	err      error
}

func (s *spyEnhancer) Enhance(ctx context.Context, prompt string) prompt_enhancer.Result {
	s.calls = append(s.calls, prompt)

	if s.err != nil {
		return prompt_enhancer.Result{Prompt: prompt, Original: prompt, FellBack: true, Err: s.err}
	}

	return prompt_enhancer.Result{Prompt: s.enhanced, Original: prompt}
}

type spyGenerator struct {
	calls []string
	url   string
	err   error
}

func (s *spyGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls = append(s.calls, prompt)

	return s.url, s.err
}

type failingRepo struct {
	image_generations.Repository
	err error
}

func (f *failingRepo) Create(ctx context.Context, generation *entities.ImageGeneration) (*entities.ImageGeneration, error) {
	return nil, f.err
}

type fixture struct {
	enhancer  *spyEnhancer
	generator *spyGenerator
	repo      image_generations.Repository
	registry  *prometheus.Registry
	pipeline  generation_pipeline.Pipeline
}

func newFixture(t *testing.T, repo image_generations.Repository) *fixture {
	t.Helper()

	if repo == nil {
		repo = image_generations.NewMemoryRepository(&clock.Fixed{At: time.Date(2024, 5, 13, 10, 0, 0, 0, time.UTC)})
	}

	f := &fixture{
		enhancer:  &spyEnhancer{enhanced: "a fluffy cat, studio lighting"},
		generator: &spyGenerator{url: "https://img/example.png"},
		repo:      repo,
		registry:  prometheus.NewRegistry(),
	}

	pipeline, err := generation_pipeline.New(generation_pipeline.Config{
		PromptEnhancer:      f.enhancer,
		ImageGenerator:      f.generator,
		ImageGenerationRepo: f.repo,
		Metrics:             metrics.New(f.registry),
	})
	require.NoError(t, err)

	f.pipeline = pipeline

	return f
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()

	all, err := f.repo.GetAll(context.Background())
	require.NoError(t, err)

	return len(all)
}

func TestGenerate_CatScenario(t *testing.T) {
	f := newFixture(t, nil)

	generation, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: "a cat"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a cat"}, f.enhancer.calls)
	assert.Equal(t, []string{"a fluffy cat, studio lighting"}, f.generator.calls)

	assert.Equal(t, "a cat", generation.Prompt)
	assert.Equal(t, "https://img/example.png", generation.ImageURL)
	assert.Equal(t, "gpt-4o", generation.Model)
	assert.Positive(t, generation.ID)

	stored, err := f.repo.GetByID(context.Background(), generation.ID)
	require.NoError(t, err)
	assert.Equal(t, generation, stored)

	assert.Equal(t, 1.0, outcomeCount(t, f.registry, metrics.OutcomeSuccess))
}

func TestGenerate_ShortPromptMakesNoExternalCalls(t *testing.T) {
	for _, prompt := range []string{"", "a", "ab"} {
		t.Run(fmt.Sprintf("%q", prompt), func(t *testing.T) {
			f := newFixture(t, nil)

			generation, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: prompt})
			assert.Nil(t, generation)

			var validationErr *validation.ValidationError
			require.True(t, errors.As(err, &validationErr))

			assert.Empty(t, f.enhancer.calls)
			assert.Empty(t, f.generator.calls)
			assert.Equal(t, 0, f.count(t))
		})
	}
}

func TestGenerate_NilRequestIsValidationError(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.pipeline.Generate(context.Background(), nil)

	var validationErr *validation.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Empty(t, f.generator.calls)
}

func TestGenerate_EnhancementFailureUsesOriginalPrompt(t *testing.T) {
	for _, prompt := range []string{"abc", "a cat", "a watercolor lighthouse at dusk"} {
		t.Run(prompt, func(t *testing.T) {
			f := newFixture(t, nil)
			f.enhancer.err = errors.New("timeout")

			generation, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: prompt})
			require.NoError(t, err)

			assert.Equal(t, []string{prompt}, f.generator.calls)
			assert.Equal(t, prompt, generation.Prompt)
			assert.Equal(t, 1, f.count(t))
		})
	}
}

func TestGenerate_StoresOriginalPromptNotEnhanced(t *testing.T) {
	f := newFixture(t, nil)
	f.enhancer.enhanced = "something else entirely"

	generation, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: "a dog"})
	require.NoError(t, err)

	assert.Equal(t, "a dog", generation.Prompt)
	assert.Equal(t, []string{"something else entirely"}, f.generator.calls)
}

func TestGenerate_KeepsRequestedModel(t *testing.T) {
	f := newFixture(t, nil)

	generation, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: "a cat", Model: "dall-e-3"})
	require.NoError(t, err)

	assert.Equal(t, "dall-e-3", generation.Model)
}

func TestGenerate_DoesNotMutateRequest(t *testing.T) {
	f := newFixture(t, nil)
	req := &entities.GenerationRequest{Prompt: "a cat"}

	_, err := f.pipeline.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, req.Model)
}

func TestGenerate_GeneratorFailureStoresNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.generator.err = errors.New("content policy violation")

	before := f.count(t)

	generation, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: "a cat"})
	assert.Nil(t, generation)

	var generationErr *generation_pipeline.GenerationError
	require.True(t, errors.As(err, &generationErr))
	assert.EqualError(t, generationErr.Err, "content policy violation")

	assert.Equal(t, before, f.count(t))
	assert.Equal(t, 1.0, outcomeCount(t, f.registry, metrics.OutcomeGenerationError))
}

func TestGenerate_EmptyURLIsGenerationError(t *testing.T) {
	f := newFixture(t, nil)
	f.generator.url = ""

	_, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: "a cat"})

	var generationErr *generation_pipeline.GenerationError
	require.True(t, errors.As(err, &generationErr))
	assert.ErrorIs(t, err, image_generator.ErrEmptyImageURL)
	assert.Equal(t, 0, f.count(t))
}

func TestGenerate_StorageFailureKeepsImageURL(t *testing.T) {
	repo := &failingRepo{
		Repository: image_generations.NewMemoryRepository(nil),
		err:        errors.New("database is locked"),
	}
	f := newFixture(t, repo)

	generation, err := f.pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: "a cat"})
	assert.Nil(t, generation)

	var storageErr *generation_pipeline.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "https://img/example.png", storageErr.ImageURL)
	assert.EqualError(t, err, "store image generation: database is locked")
	assert.Equal(t, 1.0, outcomeCount(t, f.registry, metrics.OutcomeStorageError))
}

func TestNew_MissingDependencies(t *testing.T) {
	repo := image_generations.NewMemoryRepository(nil)

	tests := []struct {
		name string
		cfg  generation_pipeline.Config
		want string
	}{
		{name: "enhancer", cfg: generation_pipeline.Config{ImageGenerator: &spyGenerator{}, ImageGenerationRepo: repo}, want: "missing prompt enhancer"},
		{name: "generator", cfg: generation_pipeline.Config{PromptEnhancer: &spyEnhancer{}, ImageGenerationRepo: repo}, want: "missing image generator"},
		{name: "repo", cfg: generation_pipeline.Config{PromptEnhancer: &spyEnhancer{}, ImageGenerator: &spyGenerator{}}, want: "missing image generation repository"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, err := generation_pipeline.New(tt.cfg)
			assert.Nil(t, pipeline)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func outcomeCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "image_generations_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}

	return 0
}
