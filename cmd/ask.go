package main

import (
	"context"

	"github.com/spf13/cobra"
)

var askUploads []string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the corpus",
	Long: `Indexes the corpus directory, after storing any --upload files, and prints
the answer to one question with the chunks it was grounded on.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askUploads, "upload", "u", nil, "file to upload before asking (repeatable)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(&cfg.Log, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	s, closeIndex, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	if len(askUploads) > 0 {
		files, err := readUploads(askUploads)
		if err != nil {
			return err
		}
		if _, err := s.Upload(ctx, files); err != nil {
			return err
		}
	} else if _, err := s.Rebuild(ctx); err != nil {
		return err
	}

	answer, err := s.Ask(ctx, args[0])
	if err != nil {
		return err
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s p.%d #%d (%.3f)\n", i+1, src.Chunk.Source, src.Chunk.PageNumber, src.Chunk.ChunkID, src.Similarity)
		}
	}
	return nil
}
