// Package session ties the corpus store, the indexing pipeline and one
// conversation together for a single chat session.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdf-chat/internal/chunker"
	"pdf-chat/internal/corpus"
	"pdf-chat/internal/embedding"
	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
	"pdf-chat/internal/parser"
	"pdf-chat/internal/rag"
)

// IndexFactory returns the index a rebuild writes into.
type IndexFactory func(ctx context.Context) (rag.Index, error)

// Session is one chat session. It is not safe for concurrent use: the
// caller runs one upload or question at a time.
type Session struct {
	ID string

	store    *corpus.Store
	chunker  *chunker.Chunker
	embedder embeddings.Embedder
	newIndex IndexFactory
	topK     int

	conv  *rag.Conversation
	index rag.Index
}

type Options struct {
	Store    *corpus.Store
	Chunker  *chunker.Chunker
	Embedder embeddings.Embedder
	Answerer rag.Answerer
	NewIndex IndexFactory
	TopK     int
}

func New(opts Options) (*Session, error) {
	if opts.Store == nil || opts.Chunker == nil || opts.Embedder == nil || opts.Answerer == nil || opts.NewIndex == nil {
		return nil, fmt.Errorf("session: store, chunker, embedder, answerer and index factory are required")
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:       id,
		store:    opts.Store,
		chunker:  opts.Chunker,
		embedder: opts.Embedder,
		newIndex: opts.NewIndex,
		topK:     opts.TopK,
		conv:     rag.NewConversation(opts.Answerer),
	}, nil
}

// Ready reports whether an index is attached.
func (s *Session) Ready() bool { return s.conv.Ready() }

func (s *Session) Store() *corpus.Store { return s.store }

// Index returns the attached index, nil before the first successful build.
func (s *Session) Index() rag.Index { return s.index }

// Upload stores every file of the batch, then rebuilds the index. An empty
// batch changes nothing and returns models.ErrNoFiles.
func (s *Session) Upload(ctx context.Context, files []models.UploadedFile) (*BuildReport, error) {
	if len(files) == 0 {
		return nil, models.ErrNoFiles
	}
	for _, f := range files {
		if _, err := s.store.Save(f.Name, f.Data); err != nil {
			return nil, err
		}
	}
	log.Info().Str("session", s.ID).Int("files", len(files)).Msg("Stored upload batch")
	return s.Rebuild(ctx)
}

// BuildReport summarises one index build.
type BuildReport struct {
	Pages   int
	Chunks  int
	Vectors int
	Took    time.Duration
}

// Rebuild indexes the whole corpus store into a new index and attaches it.
// On failure the previously attached index stays in place.
func (s *Session) Rebuild(ctx context.Context) (*BuildReport, error) {
	start := time.Now()

	pages, err := parser.LoadPages(s.store.Dir())
	if err != nil {
		return nil, err
	}
	chunks := s.chunker.Split(pages)
	log.Debug().Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Chunked corpus")

	entries, err := embedding.EmbedChunks(ctx, s.embedder, chunks)
	if err != nil {
		return nil, err
	}

	index, err := s.newIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := index.Replace(ctx, entries); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	s.index = index
	s.conv.Attach(rag.NewRetriever(s.embedder, index, s.topK))

	report := &BuildReport{Pages: len(pages), Chunks: len(chunks), Vectors: len(entries), Took: time.Since(start)}
	log.Info().Str("session", s.ID).Int("pages", report.Pages).Int("chunks", report.Chunks).Dur("took", report.Took).Msg("Index ready")
	return report, nil
}

func (s *Session) Ask(ctx context.Context, question string) (*models.Answer, error) {
	return s.conv.Ask(ctx, question)
}

// Clear empties the dialogue history. The corpus and index are untouched.
func (s *Session) Clear(ctx context.Context) error {
	return s.conv.Clear(ctx)
}

func (s *Session) History(ctx context.Context) ([]models.Turn, error) {
	return s.conv.History().Turns(ctx)
}
