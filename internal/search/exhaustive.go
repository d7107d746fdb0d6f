package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/koopa0/secondbrain/internal/knowledge"
	"github.com/koopa0/secondbrain/internal/log"
)

// DefaultLimit is the number of chunks returned when the caller does
// not specify one.
const DefaultLimit = 5

// ChunkSource lists retrieval candidates. *knowledge.Store satisfies
// it; tests substitute an in-memory fake.
type ChunkSource interface {
	ListAllChunks(ctx context.Context) ([]knowledge.Chunk, error)
	ListChunksInRange(ctx context.Context, start, end *time.Time) ([]knowledge.Chunk, error)
}

// Strategy ranks stored chunks against a query vector. Implementations
// must preserve exact-tie ordering (stable on storage order) and the
// zero-score fallback of Cosine.
type Strategy interface {
	Search(ctx context.Context, query []float32, limit int) ([]knowledge.ScoredChunk, error)
	SearchRange(ctx context.Context, query []float32, start, end *time.Time, limit int) ([]knowledge.ScoredChunk, error)
}

// Exhaustive scores every candidate chunk and sorts the lot, O(N) per
// query. Fine at personal-corpus scale; an ANN index can slot in
// behind Strategy later.
type Exhaustive struct {
	source ChunkSource
	logger log.Logger
}

// NewExhaustive creates the brute-force search strategy.
func NewExhaustive(source ChunkSource, logger log.Logger) *Exhaustive {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Exhaustive{source: source, logger: logger}
}

// Search scores every chunk in storage and returns the top limit
// results, highest similarity first. limit <= 0 means DefaultLimit.
func (e *Exhaustive) Search(ctx context.Context, query []float32, limit int) ([]knowledge.ScoredChunk, error) {
	candidates, err := e.source.ListAllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	return e.rank(query, candidates, limit), nil
}

// SearchRange narrows candidates to chunks created within
// [start, end] before scoring. Either bound may be nil (unbounded).
func (e *Exhaustive) SearchRange(ctx context.Context, query []float32, start, end *time.Time, limit int) ([]knowledge.ScoredChunk, error) {
	candidates, err := e.source.ListChunksInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading candidates in range: %w", err)
	}
	return e.rank(query, candidates, limit), nil
}

// rank scores candidates and keeps the top limit. The sort is stable:
// equal scores keep the source's storage order, which keeps result
// ordering deterministic across calls.
func (e *Exhaustive) rank(query []float32, candidates []knowledge.Chunk, limit int) []knowledge.ScoredChunk {
	if limit <= 0 {
		limit = DefaultLimit
	}

	scored := make([]knowledge.ScoredChunk, len(candidates))
	for i, c := range candidates {
		scored[i] = knowledge.ScoredChunk{Chunk: c, Score: Cosine(query, c.Embedding)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	e.logger.Debug("ranked candidates", "candidates", len(candidates), "returned", len(scored))
	return scored
}
