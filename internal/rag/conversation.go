package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/prompts"

	"pdf-chat/internal/models"
)

// Answerer turns a prompt into a raw completion.
type Answerer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Conversation answers questions from retrieved context and the running
// dialogue. It is Unready until a retriever is attached.
type Conversation struct {
	retriever *Retriever
	answerer  Answerer
	history   *History
	template  prompts.PromptTemplate
}

func NewConversation(answerer Answerer) *Conversation {
	return &Conversation{
		answerer: answerer,
		history:  NewHistory(),
		template: prompts.NewPromptTemplate(models.QAPromptTemplate, []string{"context", "history", "question"}),
	}
}

// Attach makes the conversation Ready, replacing any previous retriever.
func (c *Conversation) Attach(retriever *Retriever) {
	c.retriever = retriever
}

func (c *Conversation) Ready() bool {
	return c.retriever != nil && c.answerer != nil
}

func (c *Conversation) History() *History { return c.history }

// Clear empties the dialogue. The attached index is kept.
func (c *Conversation) Clear(ctx context.Context) error {
	return c.history.Clear(ctx)
}

// Ask answers question. The dialogue only grows when an answer was
// extracted; every failure leaves it unchanged.
func (c *Conversation) Ask(ctx context.Context, question string) (*models.Answer, error) {
	if !c.Ready() {
		return nil, models.ErrNotReady
	}

	sources, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	prompt, err := c.BuildPrompt(ctx, question, sources)
	if err != nil {
		return nil, err
	}

	completion, err := c.answerer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	answer, ok := ExtractAnswer(completion)
	if !ok {
		log.Error().Int("chars", len(completion)).Msg("Answer marker missing from completion")
		return nil, fmt.Errorf("%w: marker %q not found in completion", models.ErrAnswerExtraction, strings.TrimSpace(models.AnswerSentinel))
	}

	if err := c.history.Append(ctx, question, answer); err != nil {
		return nil, fmt.Errorf("record dialogue: %w", err)
	}
	return &models.Answer{Query: question, Text: answer, Sources: sources}, nil
}

// BuildPrompt renders the question prompt from the retrieved chunks, in
// retrieved order, and the dialogue so far.
func (c *Conversation) BuildPrompt(ctx context.Context, question string, sources []models.ScoredChunk) (string, error) {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = s.Chunk.Content
	}

	history, err := c.history.Render(ctx)
	if err != nil {
		return "", err
	}
	if history != "" {
		history += "\n"
	}

	prompt, err := c.template.Format(map[string]any{
		"context":  strings.Join(parts, "\n\n"),
		"history":  history,
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	return prompt, nil
}

// ExtractAnswer returns everything after the first answer marker in
// completion. ok is false when the marker is absent.
func ExtractAnswer(completion string) (answer string, ok bool) {
	_, after, found := strings.Cut(completion, models.AnswerSentinel)
	if !found {
		return "", false
	}
	return after, true
}
