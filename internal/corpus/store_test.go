package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestSave_WritesBytesVerbatim(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	data := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}
	doc, err := s.Save("report.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, int64(len(data)), doc.Size)
	assert.False(t, doc.UploadedAt.IsZero())

	got, err := os.ReadFile(filepath.Join(s.Dir(), "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestSave_OverwritesSameName(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("a.txt", []byte("old"))
	require.NoError(t, err)
	_, err = s.Save("a.txt", []byte("new"))
	require.NoError(t, err)

	docs, err := s.List()
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got, err := os.ReadFile(filepath.Join(s.Dir(), "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestSave_StaysInsideStore(t *testing.T) {
	root := t.TempDir()
	s, err := Open(filepath.Join(root, "data"))
	require.NoError(t, err)

	doc, err := s.Save("../../escape.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", doc.Name)

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "data", "escape.txt"))
	assert.NoError(t, err)
}

func TestSave_RejectsEmptyName(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	_, err = s.Save("", []byte("x"))
	assert.Error(t, err)
}

func TestList_SortedByName(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"c.pdf", "a.pdf", "b.pdf"} {
		_, err := s.Save(name, []byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "sub"), 0o755))

	docs, err := s.List()
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a.pdf", docs[0].Name)
	assert.Equal(t, "b.pdf", docs[1].Name)
	assert.Equal(t, "c.pdf", docs[2].Name)
}
