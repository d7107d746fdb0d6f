// Package temporal decides whether a query carries a time constraint
// and, if so, which creation-date window retrieval should narrow to.
package temporal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/koopa0/secondbrain/internal/log"
)

// Generator is the single-shot JSON generation capability the
// classifier needs. *gemini.Client satisfies it.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// TimeRange is the classification result. When HasConstraint is false
// both bounds are nil and retrieval searches the full corpus.
type TimeRange struct {
	HasConstraint bool
	Start         *time.Time
	End           *time.Time
}

// Classifier extracts time constraints from user queries with one fast
// model call. Classification is best-effort: any failure degrades to an
// unconstrained result rather than failing the chat turn.
type Classifier struct {
	gen    Generator
	logger log.Logger
	now    func() time.Time
}

// NewClassifier creates a classifier backed by the given generator.
func NewClassifier(gen Generator, logger log.Logger) *Classifier {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Classifier{gen: gen, logger: logger, now: time.Now}
}

const promptTemplate = `Analyze the user query: %q.
Extract any temporal/time constraints. Return JSON with keys:
"hasTimeConstraint" (boolean),
"startDate" (ISO string or null),
"endDate" (ISO string or null).
If relative, like "last week", calculate dates based on the current date: %s.`

// rawRange mirrors the model's response schema.
type rawRange struct {
	HasTimeConstraint bool    `json:"hasTimeConstraint"`
	StartDate         *string `json:"startDate"`
	EndDate           *string `json:"endDate"`
}

// Classify asks the model whether the query names a time window. It
// never returns an error: a failed call, malformed JSON, or an
// unparseable date all fall back to no constraint.
func (c *Classifier) Classify(ctx context.Context, query string) TimeRange {
	prompt := fmt.Sprintf(promptTemplate, query, c.now().UTC().Format(time.RFC3339))

	text, err := c.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		c.logger.Warn("temporal classification failed, searching full corpus", "error", err)
		return TimeRange{}
	}

	var raw rawRange
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		c.logger.Warn("temporal classification returned malformed JSON", "error", err)
		return TimeRange{}
	}
	if !raw.HasTimeConstraint {
		return TimeRange{}
	}

	start, err := parseDate(raw.StartDate)
	if err != nil {
		c.logger.Warn("unparseable start date, searching full corpus", "value", *raw.StartDate, "error", err)
		return TimeRange{}
	}
	end, err := parseDate(raw.EndDate)
	if err != nil {
		c.logger.Warn("unparseable end date, searching full corpus", "value", *raw.EndDate, "error", err)
		return TimeRange{}
	}
	if start == nil && end == nil {
		// Constraint claimed but no usable bound.
		return TimeRange{}
	}

	return TimeRange{HasConstraint: true, Start: start, End: end}
}

// parseDate accepts RFC 3339 timestamps and bare dates, which models
// emit interchangeably for "ISO string".
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" || *s == "null" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("not an ISO date: %q", *s)
}

// cleanJSON strips the markdown code fences some models wrap JSON
// responses in despite the JSON response MIME type.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
