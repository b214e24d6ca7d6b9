// Package chunker splits page text into fixed-size, optionally overlapping
// character windows.
package chunker

import (
	"fmt"
	"strings"

	"pdf-chat/internal/models"
)

// Chunker emits a chunk of at most Size characters every Size-Overlap
// characters. Chunks never cross page boundaries.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window configuration.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", models.ErrInvalidChunkConfig, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks every page independently, preserving page order.
func (c *Chunker) Split(pages []models.PageUnit) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		chunks = append(chunks, c.SplitPage(page)...)
	}
	return chunks
}

// SplitPage chunks the text of one page. Empty text yields no chunks and text
// no longer than the window yields exactly one.
func (c *Chunker) SplitPage(page models.PageUnit) []models.Chunk {
	runes := []rune(page.Content)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []models.Chunk
	for start := 0; ; start += step {
		end := min(start+c.size, len(runes))
		chunks = append(chunks, models.Chunk{
			Content:    string(runes[start:end]),
			Source:     page.Source,
			PageNumber: page.PageNumber,
			ChunkID:    len(chunks) + 1,
			Offset:     start,
		})
		// the window that reaches the end of the page is the last one
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Reassemble rebuilds page text from its chunks in order by dropping the
// first overlap characters of every chunk after the first.
func Reassemble(chunks []models.Chunk, overlap int) string {
	var content strings.Builder
	for i, chunk := range chunks {
		if i == 0 {
			content.WriteString(chunk.Content)
			continue
		}
		runes := []rune(chunk.Content)
		content.WriteString(string(runes[min(overlap, len(runes)):]))
	}
	return content.String()
}
