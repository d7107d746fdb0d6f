// Package knowledge defines the secondbrain data model (documents and
// their embedded chunks) and the PostgreSQL store that persists it.
package knowledge

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VectorDimension is the embedding width produced by text-embedding-004.
// All chunk embeddings in the store share this dimensionality; the
// pgvector column in db/migrations matches it.
const VectorDimension = 768

// SourceType categorizes where a document's text came from.
type SourceType string

const (
	SourceText  SourceType = "text"
	SourcePDF   SourceType = "pdf"
	SourceAudio SourceType = "audio"
	SourceImage SourceType = "image"
	SourceWeb   SourceType = "web"
)

// ParseSourceType validates a caller-supplied source type string.
func ParseSourceType(s string) (SourceType, error) {
	switch st := SourceType(s); st {
	case SourceText, SourcePDF, SourceAudio, SourceImage, SourceWeb:
		return st, nil
	default:
		return "", fmt.Errorf("unknown source type %q (want text, pdf, audio, image or web)", s)
	}
}

// Status tracks ingestion progress for a document. A document is
// created pending, and the pipeline marks it complete or failed when
// it finishes, so retrieval can exclude half-ingested documents.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Document is one ingested source. Documents are created once per
// ingestion call and never mutated afterwards except for their status.
type Document struct {
	ID            uuid.UUID
	Title         string
	SourceType    SourceType
	SourceLocator string
	Status        Status
	CreatedAt     time.Time
}

// Chunk is a bounded, overlapping slice of a document's extracted
// text, the unit of embedding and retrieval. Index is the zero-based
// position within the owning document; indices are contiguous and
// strictly increase with text position. CreatedAt is inherited from
// the ingestion event, so every chunk of a document shares it.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Content    string
	Embedding  []float32
	Index      int
	CreatedAt  time.Time
}

// ScoredChunk pairs a chunk with its cosine similarity to a query
// vector. It exists only for the duration of one retrieval call.
type ScoredChunk struct {
	Chunk
	Score float64
}
