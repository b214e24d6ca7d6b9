// Package testutil holds deterministic stand-ins for the embedding model and
// the language model.
package testutil

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

const embedDim = 64

// Embedder maps text to a bag-of-words vector. It satisfies
// embeddings.Embedder.
type Embedder struct {
	Err   error
	Calls int
}

func (e *Embedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = Vector(t)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	return Vector(text), nil
}

// Vector is the embedding Embedder produces for text.
func Vector(text string) []float32 {
	vec := make([]float32, embedDim+1)
	vec[embedDim] = 0.1
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%embedDim]++
	}
	return vec
}

// Answerer returns Completion, or the result of Respond when set, and records
// every prompt it receives.
type Answerer struct {
	Completion string
	Respond    func(prompt string) string
	Err        error

	mu      sync.Mutex
	Prompts []string
}

func (a *Answerer) Complete(_ context.Context, prompt string) (string, error) {
	a.mu.Lock()
	a.Prompts = append(a.Prompts, prompt)
	a.mu.Unlock()
	if a.Err != nil {
		return "", a.Err
	}
	if a.Respond != nil {
		return a.Respond(prompt), nil
	}
	return a.Completion, nil
}

// LastPrompt returns the most recent prompt, or "".
func (a *Answerer) LastPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.Prompts) == 0 {
		return ""
	}
	return a.Prompts[len(a.Prompts)-1]
}
