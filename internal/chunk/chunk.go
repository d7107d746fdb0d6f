// Package chunk splits extracted document text into overlapping
// fixed-size windows, the unit of embedding and retrieval.
package chunk

import (
	"errors"
	"fmt"
)

// Default window parameters used by the ingestion pipeline.
const (
	DefaultWindowSize = 1000
	DefaultOverlap    = 100
)

// ErrInvalidChunking indicates malformed window parameters. It is
// rejected before any I/O happens.
var ErrInvalidChunking = errors.New("invalid chunking parameters")

// Split cuts text into windows of windowSize bytes where consecutive
// windows share overlap bytes. The final window may be shorter than
// windowSize. Empty text yields an empty slice.
//
// windowSize must be strictly greater than overlap and overlap must be
// non-negative; the stride windowSize-overlap would otherwise never
// advance.
func Split(text string, windowSize, overlap int) ([]string, error) {
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must be >= 0", ErrInvalidChunking, overlap)
	}
	if windowSize <= overlap {
		return nil, fmt.Errorf("%w: window size %d must be > overlap %d", ErrInvalidChunking, windowSize, overlap)
	}

	if text == "" {
		return []string{}, nil
	}

	stride := windowSize - overlap
	chunks := make([]string, 0, (len(text)+stride-1)/stride)
	for start := 0; start < len(text); start += stride {
		end := min(start+windowSize, len(text))
		chunks = append(chunks, text[start:end])
	}
	return chunks, nil
}
