package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/models"
)

// metadata keys, every document carries all of them
const (
	metaSource  = "source"
	metaPage    = "page_number"
	metaChunkID = "chunk_id"
	metaOffset  = "offset"
	metaSeq     = "seq"
)

// Index is an in-memory chromem collection that is rebuilt from scratch on
// every Replace.
type Index struct {
	collectionName string
	exportPath     string
	compress       bool
	encryptionKey  string

	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
}

// Option configures an Index.
type Option func(*Index)

// WithExport writes a snapshot of the collection to path after every Replace.
// A non-empty encryption key must be 32 bytes long.
func WithExport(path string, compress bool, encryptionKey string) Option {
	return func(i *Index) {
		i.exportPath = path
		i.compress = compress
		i.encryptionKey = encryptionKey
	}
}

func NewIndex(collectionName string, opts ...Option) *Index {
	i := &Index{collectionName: collectionName}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Replace builds a fresh collection from entries and swaps it in once it is
// complete.
func (i *Index) Replace(ctx context.Context, entries []models.IndexEntry) error {
	db := chromem.NewDB()
	c, err := db.CreateCollection(i.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	if len(entries) > 0 {
		docs := make([]chromem.Document, len(entries))
		for n, e := range entries {
			docs[n] = chromem.Document{
				ID:        fmt.Sprintf("%s-%d-%d", e.Chunk.Source, e.Chunk.PageNumber, e.Chunk.ChunkID),
				Content:   e.Chunk.Content,
				Metadata:  createMetadata(e.Chunk, n),
				Embedding: e.Embedding,
			}
		}
		if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return fmt.Errorf("failed to add documents: %w", err)
		}
	}

	i.mu.Lock()
	i.db, i.collection = db, c
	i.mu.Unlock()
	log.Info().Int("documents", c.Count()).Str("collection", i.collectionName).Msg("Rebuilt vector index")

	if i.exportPath != "" {
		if err := i.Export(); err != nil {
			return err
		}
	}
	return nil
}

// Search queries the whole collection so ties can be ordered by insertion
// before truncating to k.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error) {
	i.mu.RLock()
	c := i.collection
	i.mu.RUnlock()
	if c == nil {
		return nil, models.ErrIndexUnavailable
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("query embedding must be provided")
	}

	n := c.Count()
	if n == 0 || k <= 0 {
		return nil, nil
	}

	results, err := c.QueryEmbedding(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]hit, len(results))
	for j, r := range results {
		hits[j] = hit{seq: atoi(r.Metadata[metaSeq]), scored: models.ScoredChunk{
			Chunk:      chunkFromResult(r),
			Similarity: r.Similarity,
		}}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].scored.Similarity != hits[b].scored.Similarity {
			return hits[a].scored.Similarity > hits[b].scored.Similarity
		}
		return hits[a].seq < hits[b].seq
	})

	out := make([]models.ScoredChunk, 0, min(k, len(hits)))
	for _, h := range hits[:min(k, len(hits))] {
		out = append(out, h.scored)
	}
	return out, nil
}

func (i *Index) Len(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.collection == nil {
		return 0, models.ErrIndexUnavailable
	}
	return i.collection.Count(), nil
}

// Export writes the current collection to the configured snapshot file.
func (i *Index) Export() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.collection == nil {
		return fmt.Errorf("collection is required")
	}
	if i.exportPath == "" {
		return fmt.Errorf("export path is required")
	}

	log.Debug().Str("collection", i.collectionName).Str("path", i.exportPath).Bool("compress", i.compress).Msg("Exporting collection")
	if err := i.db.ExportToFile(i.exportPath, i.compress, i.encryptionKey, i.collectionName); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

type hit struct {
	seq    int
	scored models.ScoredChunk
}

func createMetadata(chunk models.Chunk, seq int) map[string]string {
	return map[string]string{
		metaSource:  chunk.Source,
		metaPage:    strconv.Itoa(chunk.PageNumber),
		metaChunkID: strconv.Itoa(chunk.ChunkID),
		metaOffset:  strconv.Itoa(chunk.Offset),
		metaSeq:     strconv.Itoa(seq),
	}
}

func chunkFromResult(r chromem.Result) models.Chunk {
	return models.Chunk{
		Content:    r.Content,
		Source:     r.Metadata[metaSource],
		PageNumber: atoi(r.Metadata[metaPage]),
		ChunkID:    atoi(r.Metadata[metaChunkID]),
		Offset:     atoi(r.Metadata[metaOffset]),
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
