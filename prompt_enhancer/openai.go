package prompt_enhancer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

type openAIEnhancer struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the OpenAI endpoint, e.g. for a compatible proxy.
	BaseURL string
	Model   string
	Logger  zerolog.Logger
}

func NewOpenAI(cfg OpenAIConfig) (Enhancer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &openAIEnhancer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		log:    cfg.Logger,
	}, nil
}

func (e *openAIEnhancer) Enhance(ctx context.Context, prompt string) Result {
	response, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
	})
	if err != nil {
		e.log.Debug().Err(err).Str("model", e.model).Msg("Prompt enhancement failed, using original prompt")

		return fellBack(prompt, err)
	}

	if len(response.Choices) == 0 {
		e.log.Debug().Str("model", e.model).Msg("Prompt enhancement returned no choices, using original prompt")

		return fellBack(prompt, ErrEmptyEnhancement)
	}

	result := enhancedOrFallback(prompt, response.Choices[0].Message.Content)
	if result.FellBack {
		e.log.Debug().Str("model", e.model).Msg("Prompt enhancement returned empty text, using original prompt")
	}

	return result
}
