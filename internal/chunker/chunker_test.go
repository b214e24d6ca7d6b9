package chunker

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat/internal/models"
)

func page(text string) models.PageUnit {
	return models.PageUnit{Source: "doc.pdf", PageNumber: 3, Content: text}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 15},
		{"negative overlap", 10, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.size, tt.overlap)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, models.ErrInvalidChunkConfig)
		})
	}
}

func TestSplitPage_ShortPageYieldsOneChunk(t *testing.T) {
	c, err := New(200, 0)
	require.NoError(t, err)

	chunks := c.SplitPage(page("The capital of France is Paris."))
	require.Len(t, chunks, 1)
	assert.Equal(t, "The capital of France is Paris.", chunks[0].Content)
	assert.Equal(t, "doc.pdf", chunks[0].Source)
	assert.Equal(t, 3, chunks[0].PageNumber)
	assert.Equal(t, 1, chunks[0].ChunkID)
	assert.Equal(t, 0, chunks[0].Offset)
}

func TestSplitPage_EmptyPage(t *testing.T) {
	c, err := New(10, 2)
	require.NoError(t, err)
	assert.Empty(t, c.SplitPage(page("")))
}

func TestSplitPage_Windows(t *testing.T) {
	c, err := New(4, 1)
	require.NoError(t, err)

	chunks := c.SplitPage(page("abcdefghij"))
	var got []string
	for _, ch := range chunks {
		got = append(got, ch.Content)
	}
	assert.Equal(t, []string{"abcd", "defg", "ghij"}, got)
	assert.Equal(t, 3, chunks[1].Offset)
	assert.Equal(t, 3, chunks[2].ChunkID)
}

func TestSplitPage_ShorterFinalChunk(t *testing.T) {
	c, err := New(4, 0)
	require.NoError(t, err)

	chunks := c.SplitPage(page("abcdefghij"))
	require.Len(t, chunks, 3)
	assert.Equal(t, "ij", chunks[2].Content)
}

func TestSplitPage_CountsCharactersNotBytes(t *testing.T) {
	c, err := New(3, 0)
	require.NoError(t, err)

	chunks := c.SplitPage(page("héllo wörld"))
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Content)), 3)
	}
	assert.Equal(t, "hél", chunks[0].Content)
}

func TestSplit_NeverCrossesPages(t *testing.T) {
	c, err := New(5, 0)
	require.NoError(t, err)

	pages := []models.PageUnit{
		{Source: "a.pdf", PageNumber: 1, Content: "aaa"},
		{Source: "a.pdf", PageNumber: 2, Content: "bbbbbbb"},
	}
	chunks := c.Split(pages)
	require.Len(t, chunks, 3)
	assert.Equal(t, "aaa", chunks[0].Content)
	assert.Equal(t, "bbbbb", chunks[1].Content)
	assert.Equal(t, 2, chunks[1].PageNumber)
	assert.Equal(t, 1, chunks[1].ChunkID)
}

func TestReassemble_ReproducesPage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abc déf\nghï.,")

	for i := 0; i < 200; i++ {
		size := 1 + rng.Intn(30)
		overlap := rng.Intn(size)
		var sb strings.Builder
		for n := rng.Intn(150); n > 0; n-- {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		text := sb.String()

		c, err := New(size, overlap)
		require.NoError(t, err)
		chunks := c.SplitPage(page(text))
		for _, ch := range chunks {
			require.LessOrEqual(t, len([]rune(ch.Content)), size)
		}
		require.Equal(t, text, Reassemble(chunks, overlap), "size=%d overlap=%d", size, overlap)
	}
}
