// Package chat orchestrates one retrieval-augmented conversation turn:
// classify the query's time constraints, embed it, retrieve the most
// similar chunks, and generate a grounded answer.
package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/koopa0/secondbrain/internal/gemini"
	"github.com/koopa0/secondbrain/internal/knowledge"
	"github.com/koopa0/secondbrain/internal/log"
	"github.com/koopa0/secondbrain/internal/search"
	"github.com/koopa0/secondbrain/internal/temporal"
)

// Capability is the Gemini surface the orchestrator needs.
// *gemini.Client satisfies it.
type Capability interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, prompt string, history []gemini.Turn) (string, error)
}

// Classifier extracts time constraints from the query.
type Classifier interface {
	Classify(ctx context.Context, query string) temporal.TimeRange
}

// Request is one conversation turn from the user.
type Request struct {
	Message string        `json:"message"`
	History []gemini.Turn `json:"previousHistory"`
}

// SourceRef points an answer back at a retrieved document.
type SourceRef struct {
	DocumentID uuid.UUID `json:"id"`
	Score      float64   `json:"score"`
}

// Response is the generated answer plus the retrieval provenance, one
// entry per retrieved chunk in retrieval order. Chunks of the same
// document are listed once each, not deduplicated.
type Response struct {
	Answer  string      `json:"response"`
	Sources []SourceRef `json:"sources"`
}

// Orchestrator wires the chat pipeline together.
type Orchestrator struct {
	capability Capability
	classifier Classifier
	searcher   search.Strategy
	limit      int
	retry      gemini.RetryPolicy
	logger     log.Logger
}

// NewOrchestrator creates a chat orchestrator. limit <= 0 selects the
// search package default.
func NewOrchestrator(capability Capability, classifier Classifier, searcher search.Strategy, limit int, retry gemini.RetryPolicy, logger log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Orchestrator{
		capability: capability,
		classifier: classifier,
		searcher:   searcher,
		limit:      limit,
		retry:      retry,
		logger:     logger,
	}
}

// Ask answers one user turn. Retrieval narrows to the classified time
// window when the query has one; classification failures degrade to a
// full-corpus search and never fail the turn.
func (o *Orchestrator) Ask(ctx context.Context, req Request) (Response, error) {
	if req.Message == "" {
		return Response{}, fmt.Errorf("empty message")
	}

	window := o.classifier.Classify(ctx, req.Message)

	queryVec, err := gemini.Retry(ctx, o.logger, o.retry, func() ([]float32, error) {
		return o.capability.Embed(ctx, req.Message)
	})
	if err != nil {
		return Response{}, fmt.Errorf("embedding query: %w", err)
	}

	var chunks []knowledge.ScoredChunk
	if window.HasConstraint {
		o.logger.Info("retrieving with time constraint", "start", window.Start, "end", window.End)
		chunks, err = o.searcher.SearchRange(ctx, queryVec, window.Start, window.End, o.limit)
	} else {
		chunks, err = o.searcher.Search(ctx, queryVec, o.limit)
	}
	if err != nil {
		return Response{}, fmt.Errorf("retrieving context: %w", err)
	}

	prompt := buildPrompt(req.Message, chunks)
	history := sanitizeHistory(req.History)

	answer, err := gemini.Retry(ctx, o.logger, o.retry, func() (string, error) {
		return o.capability.Generate(ctx, prompt, history)
	})
	if err != nil {
		return Response{}, fmt.Errorf("generating answer: %w", err)
	}

	sources := make([]SourceRef, len(chunks))
	for i, c := range chunks {
		sources[i] = SourceRef{DocumentID: c.DocumentID, Score: c.Score}
	}

	o.logger.Info("answered", "retrieved", len(chunks), "constrained", window.HasConstraint)
	return Response{Answer: answer, Sources: sources}, nil
}

// sanitizeHistory drops a leading model turn. The Gemini chat API
// requires conversations to open with a user turn, and frontends that
// seed a greeting violate that.
func sanitizeHistory(history []gemini.Turn) []gemini.Turn {
	if len(history) > 0 && history[0].Role == gemini.RoleModel {
		return history[1:]
	}
	return history
}
