package prompt_enhancer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiEnhancer struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  zerolog.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (Enhancer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, err
	}

	return &geminiEnhancer{
		client: client,
		model:  model,
		log:    cfg.Logger,
	}, nil
}

func (e *geminiEnhancer) Enhance(ctx context.Context, prompt string) Result {
	response, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxOutputTokens,
	})
	if err != nil {
		e.log.Debug().Err(err).Str("model", e.model).Msg("Prompt enhancement failed, using original prompt")

		return fellBack(prompt, err)
	}

	result := enhancedOrFallback(prompt, response.Text())
	if result.FellBack {
		e.log.Debug().Str("model", e.model).Msg("Prompt enhancement returned empty text, using original prompt")
	}

	return result
}
