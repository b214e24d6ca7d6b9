package parser

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"pdf-chat/internal/models"
)

// pageParser returns the text of every page of the file, in page order.
type pageParser func(filePath string) ([]string, error)

var parsers = map[string]pageParser{
	".pdf":  parsePDF,
	".docx": parseDOCX,
	".pptx": parsePPTX,
	".xlsx": parseXLSX,
	".xlsm": parseWorkbook,
	".xltx": parseWorkbook,
	".md":   parseMarkdown,
	".txt":  parseText,
}

// Supported reports whether the loader can read files with the extension of name.
func Supported(name string) bool {
	_, ok := parsers[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Pages lazily yields every page of every supported document in dir. Files
// are visited in name order. The first unreadable directory or document
// yields a *models.CorpusReadError and ends the sequence.
func Pages(dir string) iter.Seq2[models.PageUnit, error] {
	return func(yield func(models.PageUnit, error) bool) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			yield(models.PageUnit{}, &models.CorpusReadError{Path: dir, Err: err})
			return
		}

		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			filePath := filepath.Join(dir, entry.Name())
			parse, ok := parsers[strings.ToLower(filepath.Ext(entry.Name()))]
			if !ok {
				log.Warn().Str("file", entry.Name()).Msg("Skipping unsupported file")
				continue
			}

			pages, err := safeParse(parse, filePath)
			if err != nil {
				yield(models.PageUnit{}, &models.CorpusReadError{Path: filePath, Err: err})
				return
			}
			log.Debug().Str("file", entry.Name()).Int("pages", len(pages)).Msg("Parsed document")

			for i, text := range pages {
				page := models.PageUnit{
					Source:     entry.Name(),
					PageNumber: i + 1,
					Content:    strings.ToValidUTF8(text, ""),
				}
				if !yield(page, nil) {
					return
				}
			}
		}
	}
}

// LoadPages collects Pages into a slice.
func LoadPages(dir string) ([]models.PageUnit, error) {
	var pages []models.PageUnit
	for page, err := range Pages(dir) {
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// safeParse turns a panic inside a third-party reader into an error.
func safeParse(parse pageParser, filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()
	return parse(filePath)
}
