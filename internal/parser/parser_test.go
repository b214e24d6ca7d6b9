package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadPages_TextDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "france.txt", "The capital of France is Paris.")

	pages, err := LoadPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, models.PageUnit{Source: "france.txt", PageNumber: 1, Content: "The capital of France is Paris."}, pages[0])
}

func TestLoadPages_OrderedByFileName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "second")
	writeFile(t, dir, "a.txt", "first")
	writeFile(t, dir, "c.md", "# Title\n\nthird")

	pages, err := LoadPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "a.txt", pages[0].Source)
	assert.Equal(t, "b.txt", pages[1].Source)
	assert.Equal(t, "c.md", pages[2].Source)

	again, err := LoadPages(dir)
	require.NoError(t, err)
	assert.Equal(t, pages, again)
}

func TestLoadPages_SkipsUnsupportedFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "kept")
	writeFile(t, dir, "image.png", "\x89PNG")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755))

	pages, err := LoadPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "notes.txt", pages[0].Source)
}

func TestLoadPages_MalformedPDFAbortsLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "fine")
	writeFile(t, dir, "broken.pdf", "this is not a pdf")

	pages, err := LoadPages(dir)
	assert.Nil(t, pages)
	require.ErrorIs(t, err, models.ErrCorpusRead)

	var readErr *models.CorpusReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, filepath.Join(dir, "broken.pdf"), readErr.Path)
}

func TestLoadPages_MissingDirectory(t *testing.T) {
	_, err := LoadPages(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, models.ErrCorpusRead)
}

func TestPages_StopsWhenConsumerStops(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one")
	writeFile(t, dir, "b.txt", "two")

	var seen []string
	for page, err := range Pages(dir) {
		require.NoError(t, err)
		seen = append(seen, page.Source)
		break
	}
	assert.Equal(t, []string{"a.txt"}, seen)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("report.PDF"))
	assert.True(t, Supported("notes.md"))
	assert.True(t, Supported("sheet.xlsx"))
	assert.False(t, Supported("photo.jpg"))
	assert.False(t, Supported("README"))
}

func TestMarkdownToText(t *testing.T) {
	src := "# Heading\n\nSome *emphasis* and `code`.\n\n- one\n- two\n\n```\nfenced\n```\n"
	text := markdownToText([]byte(src))

	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "Some emphasis and code.")
	assert.Contains(t, text, "one")
	assert.Contains(t, text, "two")
	assert.Contains(t, text, "fenced")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "*")
}

func TestExtractXMLText(t *testing.T) {
	xml := `<w:p><w:r><w:t>Fish &amp; chips</w:t></w:r><w:r><w:t xml:space="preserve"> today</w:t></w:r></w:p>`
	assert.Equal(t, "Fish & chips today", extractXMLText(xml, wordTextRe, ""))
}
