package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-chat/internal/config"
)

// Answerer sends a prompt to a language model with fixed decoding options.
type Answerer struct {
	llm     llms.Model
	opts    []llms.CallOption
	timeout time.Duration
	// echoesPrompt is set for text-generation endpoints that return the
	// prompt followed by the generated text.
	echoesPrompt bool
}

// New connects to the configured provider
func New(llmConfig *config.AnswerLLMConfig) (*Answerer, error) {
	llm, err := newModel(&llmConfig.LLMConfig)
	if err != nil {
		return nil, err
	}
	return NewWithModel(llm, llmConfig), nil
}

// NewWithModel wraps an existing model.
func NewWithModel(llm llms.Model, llmConfig *config.AnswerLLMConfig) *Answerer {
	opts := []llms.CallOption{
		llms.WithTemperature(llmConfig.Temperature),
		llms.WithMaxTokens(llmConfig.MaxNewTokens),
		llms.WithTopP(llmConfig.TopP),
		llms.WithTopK(llmConfig.TopK),
	}
	if llmConfig.Model != "" {
		opts = append(opts, llms.WithModel(llmConfig.Model))
	}
	return &Answerer{
		llm:          llm,
		opts:         opts,
		timeout:      llmConfig.RequestTimeout,
		echoesPrompt: providerEchoesPrompt(llmConfig.Provider),
	}
}

// providerEchoesPrompt reports whether provider returns the full text. The
// HuggingFace inference API does by default; chat endpoints return only the
// generated reply.
func providerEchoesPrompt(provider string) bool {
	return provider == config.ProviderHuggingFace
}

// Complete returns the full text for prompt: the prompt followed by the
// generated reply, whether or not the provider echoes the prompt itself.
// Errors from the model are returned as is, nothing is retried.
func (a *Answerer) Complete(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt, a.opts...)
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}
	log.Debug().Dur("took", time.Since(start)).Int("chars", len(completion)).Msg("Generated completion")
	if !a.echoesPrompt {
		completion = prompt + completion
	}
	return completion, nil
}

func newModel(llmConfig *config.LLMConfig) (llms.Model, error) {
	log.Debug().Str("provider", llmConfig.Provider).Str("model", llmConfig.Model).Msg("Creating llm client")
	switch llmConfig.Provider {
	case config.ProviderHuggingFace:
		opts := []huggingface.Option{huggingface.WithModel(llmConfig.Model)}
		if token := llmConfig.Token(); token != "" {
			opts = append(opts, huggingface.WithToken(token))
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, huggingface.WithURL(llmConfig.BaseURL))
		}
		return huggingface.New(opts...)
	case config.ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(llmConfig.Model)}
		if llmConfig.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
		}
		return ollama.New(opts...)
	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(llmConfig.Token(), "Bearer ")),
			openai.WithModel(llmConfig.Model),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", llmConfig.Provider)
	}
}
