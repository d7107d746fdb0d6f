// Package ingest runs the document ingestion pipeline: split source
// text into overlapping chunks, embed each chunk, and persist the
// results under a tracked document.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/koopa0/secondbrain/internal/chunk"
	"github.com/koopa0/secondbrain/internal/gemini"
	"github.com/koopa0/secondbrain/internal/knowledge"
	"github.com/koopa0/secondbrain/internal/log"
)

// DefaultWorkers caps concurrent embedding calls per document.
const DefaultWorkers = 4

// Store is the persistence surface the pipeline needs.
// *knowledge.Store satisfies it.
type Store interface {
	CreateDocument(ctx context.Context, title string, sourceType knowledge.SourceType, locator string) (uuid.UUID, error)
	SetDocumentStatus(ctx context.Context, id uuid.UUID, status knowledge.Status) error
	CreateChunk(ctx context.Context, c knowledge.Chunk) error
}

// Embedder produces an embedding vector for one text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Source is one piece of content to ingest.
type Source struct {
	Type    knowledge.SourceType
	Title   string
	Locator string
	Text    string
}

// Options tunes the pipeline. Zero values select the defaults.
type Options struct {
	// WindowSize and Overlap configure chunking; zero means the
	// chunking package defaults.
	WindowSize int
	Overlap    int

	// Workers bounds concurrent embedding calls. Zero means
	// DefaultWorkers.
	Workers int

	// EmbedRate throttles embedding calls across workers, in calls per
	// second. Zero means unthrottled.
	EmbedRate rate.Limit

	// Retry governs how embedding calls are retried on transient
	// upstream failures.
	Retry gemini.RetryPolicy
}

// Pipeline ingests sources. Safe for concurrent use.
type Pipeline struct {
	store    Store
	embedder Embedder
	opts     Options
	limiter  *rate.Limiter
	logger   log.Logger
	now      func() time.Time
}

// New creates an ingestion pipeline.
func New(store Store, embedder Embedder, opts Options, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	if opts.WindowSize == 0 {
		opts.WindowSize = chunk.DefaultWindowSize
	}
	if opts.Overlap == 0 && opts.WindowSize == chunk.DefaultWindowSize {
		opts.Overlap = chunk.DefaultOverlap
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	var limiter *rate.Limiter
	if opts.EmbedRate > 0 {
		limiter = rate.NewLimiter(opts.EmbedRate, 1)
	}

	return &Pipeline{
		store:    store,
		embedder: embedder,
		opts:     opts,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}
}

// Ingest runs the full pipeline for one source. The document is
// created in pending state before any embedding work starts, marked
// complete once every chunk is persisted, and marked failed if any
// step errors after creation. Empty source text yields a complete
// document with zero chunks.
func (p *Pipeline) Ingest(ctx context.Context, src Source) (uuid.UUID, error) {
	pieces, err := chunk.Split(src.Text, p.opts.WindowSize, p.opts.Overlap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("chunking %q: %w", src.Title, err)
	}

	docID, err := p.store.CreateDocument(ctx, src.Title, src.Type, src.Locator)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating document: %w", err)
	}

	p.logger.Info("ingesting document",
		"document_id", docID, "title", src.Title, "source_type", src.Type, "chunks", len(pieces))

	if err := p.embedAndPersist(ctx, docID, pieces); err != nil {
		if stErr := p.store.SetDocumentStatus(ctx, docID, knowledge.StatusFailed); stErr != nil {
			p.logger.Error("marking document failed", "document_id", docID, "error", stErr)
		}
		return docID, err
	}

	if err := p.store.SetDocumentStatus(ctx, docID, knowledge.StatusComplete); err != nil {
		return docID, fmt.Errorf("marking document complete: %w", err)
	}
	return docID, nil
}

// embedAndPersist fans embedding calls out across workers, then writes
// the chunks sequentially in window order so storage order matches
// document order.
func (p *Pipeline) embedAndPersist(ctx context.Context, docID uuid.UUID, pieces []string) error {
	vectors := make([][]float32, len(pieces))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, text := range pieces {
		g.Go(func() error {
			if p.limiter != nil {
				if err := p.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			vec, err := gemini.Retry(gctx, p.logger, p.opts.Retry, func() ([]float32, error) {
				return p.embedder.Embed(gctx, text)
			})
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	createdAt := p.now()
	for i, text := range pieces {
		c := knowledge.Chunk{
			ID:         uuid.New(),
			DocumentID: docID,
			Content:    text,
			Embedding:  vectors[i],
			Index:      i,
			CreatedAt:  createdAt,
		}
		if err := p.store.CreateChunk(ctx, c); err != nil {
			return fmt.Errorf("persisting chunk %d: %w", i, err)
		}
	}
	return nil
}
