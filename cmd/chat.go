package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdf-chat/internal/tui"
)

var chatReindex bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat (default)",
	Long: `Opens the chat screen. Type a question and press Enter, or use
/upload <file>... to add documents, /clear to reset the chat and /quit to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, chatCmd} {
		c.Flags().BoolVar(&chatReindex, "reindex", false, "index the documents already in the corpus directory on start")
	}
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(&cfg.Log, cmd.ErrOrStderr(), true)
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

	if chatReindex {
		if _, err := s.Rebuild(ctx); err != nil {
			return err
		}
	}

	_, err = tea.NewProgram(tui.New(ctx, s), tea.WithAltScreen()).Run()
	return err
}
