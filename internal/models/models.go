package models

import "time"

// Document is a file held in the corpus store.
type Document struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PageUnit is the text of one page of one document. PageNumber is 1-based.
type PageUnit struct {
	Source     string `json:"source"`
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// Chunk represents a bounded slice of a page with metadata
type Chunk struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	PageNumber int    `json:"page_number"`
	ChunkID    int    `json:"chunk_id"`
	Offset     int    `json:"offset"` // rune offset within the page
}

// IndexEntry pairs a chunk with its embedding.
type IndexEntry struct {
	Chunk     Chunk
	Embedding []float32
}

// ScoredChunk is a retrieval hit. Higher similarity is nearer.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float32
}

// Role identifies the author of a dialogue turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the dialogue history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Answer is the extracted reply to a question and the chunks it was grounded on.
type Answer struct {
	Query   string
	Text    string
	Sources []ScoredChunk
}

// UploadedFile is one file of an upload batch.
type UploadedFile struct {
	Name string
	Data []byte
}
