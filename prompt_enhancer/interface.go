package prompt_enhancer

import (
	"context"
	"errors"
	"strings"
)

// SystemInstruction is sent with every enhancement request, whatever the provider.
const SystemInstruction = "You are an expert at creating detailed prompts for image generation. " +
	"Your task is to enhance user prompts with more descriptive details that will help create stunning, high-quality images. " +
	"Maintain the original intent and theme, but add artistic direction, style references, lighting details, and scene composition. " +
	"Keep the enhanced prompt under 400 characters. " +
	"Return only the enhanced prompt without explanations or formatting."

const (
	maxOutputTokens = 300
	temperature     = 0.7
)

var ErrEmptyEnhancement = errors.New("enhancement returned no text")

// Result carries the prompt to generate from. When FellBack is set, Prompt is the
// original prompt and Err holds the reason enhancement was skipped.
type Result struct {
	Prompt   string
	Original string
	FellBack bool
	Err      error
}

// Enhancer never fails: provider errors are reported through Result.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) Result
}

func fellBack(prompt string, err error) Result {
	return Result{
		Prompt:   prompt,
		Original: prompt,
		FellBack: true,
		Err:      err,
	}
}

func enhancedOrFallback(prompt, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return fellBack(prompt, ErrEmptyEnhancement)
	}

	return Result{
		Prompt:   text,
		Original: prompt,
	}
}

type passthrough struct{}

// NewPassthrough returns an Enhancer that leaves prompts untouched.
func NewPassthrough() Enhancer {
	return passthrough{}
}

func (passthrough) Enhance(ctx context.Context, prompt string) Result {
	return Result{
		Prompt:   prompt,
		Original: prompt,
	}
}
