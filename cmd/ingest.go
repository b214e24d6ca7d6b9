package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pdf-chat/internal/chunker"
	"pdf-chat/internal/corpus"
	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
	"pdf-chat/internal/parser"
)

var ingestDryRun bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Upload documents and build the index",
	Long: `Copies the given files into the corpus directory and indexes the whole corpus.
With --dry-run nothing is copied or embedded; the current corpus is chunked and
the chunks are printed as JSON.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "print the chunks of the corpus without embedding them")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(&cfg.Log, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer closeLog()

	if ingestDryRun {
		store, err := corpus.Open(cfg.Corpus.Dir)
		if err != nil {
			return err
		}
		ch, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
		if err != nil {
			return err
		}
		pages, err := parser.LoadPages(store.Dir())
		if err != nil {
			return err
		}
		return helper.PrettyPrint(cmd.OutOrStdout(), ch.Split(pages))
	}

	files, err := readUploads(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, closeIndex, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	report, err := s.Upload(ctx, files)
	if errors.Is(err, models.ErrNoFiles) {
		log.Warn().Msg("Please upload PDFs")
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Printf("Indexed %d pages into %d chunks in %s\n", report.Pages, report.Chunks, report.Took.Round(time.Millisecond))
	return nil
}

func readUploads(paths []string) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		files = append(files, models.UploadedFile{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}
