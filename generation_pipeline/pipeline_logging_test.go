package generation_pipeline_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"image_generation_server/clock"
	"image_generation_server/entities"
	"image_generation_server/generation_pipeline"
	"image_generation_server/logger"
	"image_generation_server/prompt_enhancer"
	"image_generation_server/repositories/image_generations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_EnhancementFallbackWarnsOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer

	log, err := logger.NewWithWriter(&out, "debug", "json")
	require.NoError(t, err)

	enhancer, err := prompt_enhancer.NewOpenAI(prompt_enhancer.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/v1",
		Logger:  log,
	})
	require.NoError(t, err)

	pipeline, err := generation_pipeline.New(generation_pipeline.Config{
		PromptEnhancer:      enhancer,
		ImageGenerator:      &spyGenerator{url: "https://img/example.png"},
		ImageGenerationRepo: image_generations.NewMemoryRepository(clock.NewClock()),
		Logger:              log,
	})
	require.NoError(t, err)

	_, err = pipeline.Generate(context.Background(), &entities.GenerationRequest{Prompt: "a cat"})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out.String(), `"level":"warn"`))
}
