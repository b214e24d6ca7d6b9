// Package corpus manages the directory that holds uploaded documents.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
)

// Store is a flat directory of documents named by their upload filename.
type Store struct {
	dir string
	now func() time.Time
}

// Open returns the store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("corpus directory is required")
	}
	if err := helper.CreateFolder(dir); err != nil {
		return nil, fmt.Errorf("create corpus directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes data verbatim under the base name of name, replacing any file
// with the same name.
func (s *Store) Save(name string, data []byte) (models.Document, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return models.Document{}, fmt.Errorf("invalid file name %q", name)
	}
	path := filepath.Join(s.dir, base)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.Document{}, fmt.Errorf("write %s: %w", path, err)
	}
	log.Debug().Str("file", base).Int("bytes", len(data)).Msg("Stored document")
	return models.Document{Name: base, Size: int64(len(data)), UploadedAt: s.now()}, nil
}

// List returns the stored documents sorted by name.
func (s *Store) List() ([]models.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &models.CorpusReadError{Path: s.dir, Err: err}
	}
	var docs []models.Document
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, &models.CorpusReadError{Path: filepath.Join(s.dir, e.Name()), Err: err}
		}
		docs = append(docs, models.Document{Name: e.Name(), Size: info.Size(), UploadedAt: info.ModTime()})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}
