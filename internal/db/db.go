package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
)

const insertBatchSize = 500

type ChunkRecord struct {
	bun.BaseModel  `bun:"table:chunks,alias:c"`
	ID             int64           `bun:"id,pk,autoincrement"`
	Content        string          `bun:"content,notnull"`
	Embedding      pgvector.Vector `bun:"embedding,notnull,type:vector"`
	SourceFilename string          `bun:"source_filename,notnull"`
	PageNumber     int             `bun:"page_number,notnull"`
	ChunkID        int             `bun:"chunk_id,notnull"`
	CharOffset     int             `bun:"char_offset,notnull"`
	Distance       float64         `bun:"distance,scanonly"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the database with the configured driver
func ConnectDB(dbConfig *config.DatabaseConfig) (*sql.DB, error) {
	if dbConfig.Driver == config.DriverPQ {
		return sql.Open("postgres", dbConfig.DSN)
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(dbConfig.DSN)}
	if dbConfig.Password != "" {
		opts = append(opts, pgdriver.WithPassword(dbConfig.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	_, err := db.NewCreateTable().Model((*ChunkRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

func DropChunks(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*ChunkRecord)(nil)).IfExists().Exec(ctx)
	return err
}

// Index keeps the chunks of the current session in a pgvector table.
type Index struct {
	db    *bun.DB
	built bool
}

// NewIndex prepares the schema. The table contents are not usable until the
// first Replace.
func NewIndex(ctx context.Context, db *bun.DB) (*Index, error) {
	if err := InitDB(ctx, db); err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

// Replace truncates the table and inserts entries in one transaction.
func (i *Index) Replace(ctx context.Context, entries []models.IndexEntry) error {
	records := make([]ChunkRecord, len(entries))
	for n, e := range entries {
		records[n] = ChunkRecord{
			Content:        e.Chunk.Content,
			Embedding:      pgvector.NewVector(e.Embedding),
			SourceFilename: e.Chunk.Source,
			PageNumber:     e.Chunk.PageNumber,
			ChunkID:        e.Chunk.ChunkID,
			CharOffset:     e.Chunk.Offset,
		}
	}

	err := i.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewTruncateTable().Model((*ChunkRecord)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate chunks: %w", err)
		}
		for start := 0; start < len(records); start += insertBatchSize {
			batch := records[start:min(start+insertBatchSize, len(records))]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return fmt.Errorf("insert chunks: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	i.built = true
	log.Info().Int("documents", len(records)).Msg("Rebuilt pgvector index")
	return nil
}

// Search orders by cosine distance, then by id so equally near chunks keep
// their insertion order.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error) {
	if !i.built {
		return nil, models.ErrIndexUnavailable
	}
	if k <= 0 {
		return nil, nil
	}

	var records []ChunkRecord
	err := i.db.NewSelect().
		Model(&records).
		Column("id", "content", "source_filename", "page_number", "chunk_id", "char_offset").
		ColumnExpr("embedding <=> ? AS distance", pgvector.NewVector(query)).
		OrderExpr("distance ASC, id ASC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	out := make([]models.ScoredChunk, len(records))
	for n, r := range records {
		out[n] = models.ScoredChunk{
			Chunk: models.Chunk{
				Content:    r.Content,
				Source:     r.SourceFilename,
				PageNumber: r.PageNumber,
				ChunkID:    r.ChunkID,
				Offset:     r.CharOffset,
			},
			Similarity: float32(1 - r.Distance),
		}
	}
	return out, nil
}

func (i *Index) Len(ctx context.Context) (int, error) {
	if !i.built {
		return 0, models.ErrIndexUnavailable
	}
	return i.db.NewSelect().Model((*ChunkRecord)(nil)).Count(ctx)
}

func (i *Index) Close() error {
	return i.db.Close()
}
