package models

import (
	"errors"
	"fmt"
)

var (
	ErrCorpusRead         = errors.New("corpus read error")
	ErrInvalidChunkConfig = errors.New("invalid chunk config")
	ErrIndexUnavailable   = errors.New("index unavailable")
	ErrNotReady           = errors.New("not ready: upload documents first")
	ErrAnswerExtraction   = errors.New("answer extraction failed")
	ErrNoFiles            = errors.New("no files uploaded")
	ErrDimensionMismatch  = errors.New("embedding dimension mismatch")
)

// CorpusReadError reports an unreadable corpus directory or a document that
// could not be parsed into pages.
type CorpusReadError struct {
	Path string
	Err  error
}

func (e *CorpusReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *CorpusReadError) Unwrap() error { return e.Err }

func (e *CorpusReadError) Is(target error) bool { return target == ErrCorpusRead }
