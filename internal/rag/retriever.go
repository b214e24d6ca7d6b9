package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdf-chat/internal/models"
)

// Index stores embedded chunks and answers nearest-neighbour queries.
type Index interface {
	// Replace atomically swaps the contents of the index for entries. On
	// error the previous contents stay in place.
	Replace(ctx context.Context, entries []models.IndexEntry) error
	// Search returns up to k chunks nearest first. Equally near chunks keep
	// their insertion order. An empty index yields no results.
	Search(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error)
	Len(ctx context.Context) (int, error)
}

// Retriever runs fixed top-k similarity queries against an index.
type Retriever struct {
	embedder embeddings.Embedder
	index    Index
	k        int
}

func NewRetriever(embedder embeddings.Embedder, index Index, k int) *Retriever {
	if k <= 0 {
		k = models.DefaultTopK
	}
	return &Retriever{embedder: embedder, index: index, k: k}
}

func (r *Retriever) K() int { return r.k }

// Retrieve embeds query and returns the k nearest chunks.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.ScoredChunk, error) {
	if r == nil || r.index == nil {
		return nil, models.ErrIndexUnavailable
	}

	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.index.Search(ctx, vec, r.k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	log.Debug().Int("k", r.k).Int("results", len(results)).Msg("Retrieved chunks")
	return results, nil
}
