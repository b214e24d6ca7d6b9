package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pdf-chat/internal/chromemdb"
	"pdf-chat/internal/chunker"
	"pdf-chat/internal/config"
	"pdf-chat/internal/corpus"
	"pdf-chat/internal/db"
	"pdf-chat/internal/embedding"
	"pdf-chat/internal/llmservice"
	"pdf-chat/internal/rag"
	"pdf-chat/internal/session"
)

const defaultConfigPath = "./configs/config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "pdfchat",
	Short:         "Chat with your PDF documents",
	Long:          "Upload documents, index their text and ask questions answered by a language model from the indexed content.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupLogging writes to out, or to the configured log file when the
// terminal belongs to the chat screen.
func setupLogging(cfg *config.LogConfig, out io.Writer, toFile bool) (func(), error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level)

	closeFn := func() {}
	if toFile {
		if cfg.File == "" {
			log.Logger = zerolog.Nop()
			return closeFn, nil
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: toFile}).With().Caller().Logger()
	return closeFn, nil
}

// newSession wires the configured collaborators into a chat session.
func newSession(ctx context.Context, cfg *config.Config) (*session.Session, func(), error) {
	store, err := corpus.Open(cfg.Corpus.Dir)
	if err != nil {
		return nil, nil, err
	}

	ch, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("model", cfg.EmbedLLM.Model).Msg("Loading embeddings model")
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize embedder: %w", err)
	}

	log.Info().Str("model", cfg.AnswerLLM.Model).Msg("Loading LLM")
	answerer, err := llmservice.New(&cfg.AnswerLLM)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize llm: %w", err)
	}

	newIndex, closeIndex, err := indexFactory(ctx, &cfg.Index)
	if err != nil {
		return nil, nil, err
	}

	s, err := session.New(session.Options{
		Store:    store,
		Chunker:  ch,
		Embedder: embedder,
		Answerer: answerer,
		NewIndex: newIndex,
		TopK:     cfg.RAG.TopK,
	})
	if err != nil {
		closeIndex()
		return nil, nil, err
	}
	log.Info().Str("session", s.ID).Str("corpus", store.Dir()).Str("index", cfg.Index.Backend).Msg("Session started")
	return s, closeIndex, nil
}

func indexFactory(ctx context.Context, cfg *config.IndexConfig) (session.IndexFactory, func(), error) {
	switch cfg.Backend {
	case config.BackendPGVector:
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		index, err := db.NewIndex(ctx, db.NewDB(sqldb, cfg.Database.Debug))
		if err != nil {
			sqldb.Close()
			return nil, nil, fmt.Errorf("initialize database: %w", err)
		}
		factory := func(context.Context) (rag.Index, error) { return index, nil }
		return factory, func() { index.Close() }, nil
	default:
		var opts []chromemdb.Option
		if cfg.Chromem.ExportPath != "" {
			opts = append(opts, chromemdb.WithExport(cfg.Chromem.ExportPath, cfg.Chromem.Compress, cfg.Chromem.EncryptionKey))
		}
		factory := func(context.Context) (rag.Index, error) {
			return chromemdb.NewIndex(cfg.Chromem.Collection, opts...), nil
		}
		return factory, func() {}, nil
	}
}
