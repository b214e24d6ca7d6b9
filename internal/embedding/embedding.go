package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	hfembed "github.com/tmc/langchaingo/embeddings/huggingface"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
)

const featureExtractionTask = "feature-extraction"

// NewEmbedder creates the embedder for the configured provider
func NewEmbedder(llmConfig *config.LLMConfig) (embeddings.Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        llmConfig.Provider,
		"base_url":        llmConfig.BaseURL,
		"embedding_model": llmConfig.Model,
	}).Msg("Creating embedder")

	switch llmConfig.Provider {
	case config.ProviderHuggingFace:
		return newHuggingFaceEmbedder(llmConfig)
	case config.ProviderOllama:
		return NewOllamaEmbedder(llmConfig)
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(llmConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", llmConfig.Provider)
	}
}

func newHuggingFaceEmbedder(llmConfig *config.LLMConfig) (embeddings.Embedder, error) {
	var opts []huggingface.Option
	if token := llmConfig.Token(); token != "" {
		opts = append(opts, huggingface.WithToken(token))
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, huggingface.WithURL(llmConfig.BaseURL))
	}
	client, err := huggingface.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init huggingface client: %w", err)
	}
	embedder, err := hfembed.NewHuggingface(
		hfembed.WithClient(*client),
		hfembed.WithModel(llmConfig.Model),
		hfembed.WithTask(featureExtractionTask),
	)
	if err != nil {
		return nil, fmt.Errorf("create huggingface embedder: %w", err)
	}
	return embedder, nil
}

// new ollama embedder
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (embeddings.Embedder, error) {
	opts := []ollama.Option{ollama.WithModel(llmConfig.Model)}
	if llmConfig.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// NewOpenAIEmbedder works with any OpenAI compatible endpoint
func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (embeddings.Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(llmConfig.Token(), "Bearer ")),
		openai.WithEmbeddingModel(llmConfig.Model),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// EmbedChunks embeds all chunks in one batch. Every vector must have the
// same length.
func EmbedChunks(ctx context.Context, embedder embeddings.Embedder, chunks []models.Chunk) ([]models.IndexEntry, error) {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks to embed")
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", models.ErrDimensionMismatch, len(vectors), len(chunks))
	}

	dim := len(vectors[0])
	entries := make([]models.IndexEntry, len(chunks))
	for i, vec := range vectors {
		if len(vec) == 0 || len(vec) != dim {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, want %d", models.ErrDimensionMismatch, i, len(vec), dim)
		}
		entries[i] = models.IndexEntry{Chunk: chunks[i], Embedding: vec}
	}

	log.Debug().Int("vectors", len(entries)).Int("dimensions", dim).Msg("Generated embeddings")
	return entries, nil
}
