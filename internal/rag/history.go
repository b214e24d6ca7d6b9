package rag

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"

	"pdf-chat/internal/models"
)

// History is the append-only dialogue of one session.
type History struct {
	buf *memory.ChatMessageHistory
}

func NewHistory() *History {
	return &History{buf: memory.NewChatMessageHistory()}
}

// Append adds a question and its answer as one exchange.
func (h *History) Append(ctx context.Context, question, answer string) error {
	if err := h.buf.AddUserMessage(ctx, question); err != nil {
		return err
	}
	return h.buf.AddAIMessage(ctx, answer)
}

func (h *History) Turns(ctx context.Context) ([]models.Turn, error) {
	msgs, err := h.buf.Messages(ctx)
	if err != nil {
		return nil, err
	}
	turns := make([]models.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := models.RoleAssistant
		if m.GetType() == llms.ChatMessageTypeHuman {
			role = models.RoleUser
		}
		turns = append(turns, models.Turn{Role: role, Text: m.GetContent()})
	}
	return turns, nil
}

// Len counts messages; every exchange adds two.
func (h *History) Len(ctx context.Context) (int, error) {
	msgs, err := h.buf.Messages(ctx)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

func (h *History) Clear(ctx context.Context) error {
	return h.buf.Clear(ctx)
}

// Render formats the dialogue as "Human: ..." / "AI: ..." lines.
func (h *History) Render(ctx context.Context) (string, error) {
	msgs, err := h.buf.Messages(ctx)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}
	buf, err := llms.GetBufferString(msgs, models.HumanPrefix, models.AIPrefix)
	if err != nil {
		return "", fmt.Errorf("render history: %w", err)
	}
	return buf, nil
}
