package temporal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/secondbrain/internal/log"
	"github.com/koopa0/secondbrain/internal/temporal"
	"github.com/koopa0/secondbrain/internal/testutil"
)

func TestClassifyConstrainedQuery(t *testing.T) {
	llm := &testutil.LLM{Script: []testutil.GenResult{
		{Text: `{"hasTimeConstraint": true, "startDate": "2025-06-01T00:00:00Z", "endDate": "2025-06-08T00:00:00Z"}`},
	}}

	c := temporal.NewClassifier(llm, log.NewNop())
	got := c.Classify(context.Background(), "what did I note last week?")

	require.True(t, got.HasConstraint)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got.Start.UTC())
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), got.End.UTC())
}

func TestClassifyUnconstrainedQuery(t *testing.T) {
	llm := &testutil.LLM{Script: []testutil.GenResult{
		{Text: `{"hasTimeConstraint": false, "startDate": null, "endDate": null}`},
	}}

	c := temporal.NewClassifier(llm, log.NewNop())
	got := c.Classify(context.Background(), "what is a monad?")

	assert.False(t, got.HasConstraint)
	assert.Nil(t, got.Start)
	assert.Nil(t, got.End)
}

func TestClassifyOpenEndedBound(t *testing.T) {
	llm := &testutil.LLM{Script: []testutil.GenResult{
		{Text: `{"hasTimeConstraint": true, "startDate": "2025-01-01", "endDate": null}`},
	}}

	c := temporal.NewClassifier(llm, log.NewNop())
	got := c.Classify(context.Background(), "notes since January")

	require.True(t, got.HasConstraint)
	require.NotNil(t, got.Start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), got.Start.UTC())
	assert.Nil(t, got.End)
}

func TestClassifyFailsOpen(t *testing.T) {
	tests := []struct {
		name   string
		script []testutil.GenResult
	}{
		{"generation error", []testutil.GenResult{{Err: errors.New("model unavailable")}}},
		{"malformed JSON", []testutil.GenResult{{Text: "not json at all"}}},
		{"unparseable date", []testutil.GenResult{{Text: `{"hasTimeConstraint": true, "startDate": "yesterday-ish"}`}}},
		{"constraint without bounds", []testutil.GenResult{{Text: `{"hasTimeConstraint": true, "startDate": null, "endDate": null}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &testutil.LLM{Script: tt.script}
			c := temporal.NewClassifier(llm, log.NewNop())

			got := c.Classify(context.Background(), "what happened recently?")
			assert.Equal(t, temporal.TimeRange{}, got)
		})
	}
}

func TestClassifyStripsCodeFences(t *testing.T) {
	llm := &testutil.LLM{Script: []testutil.GenResult{
		{Text: "```json\n{\"hasTimeConstraint\": true, \"startDate\": \"2025-03-01\", \"endDate\": \"2025-03-31\"}\n```"},
	}}

	c := temporal.NewClassifier(llm, log.NewNop())
	got := c.Classify(context.Background(), "march notes")

	assert.True(t, got.HasConstraint)
}

func TestClassifyPromptCarriesQueryAndClock(t *testing.T) {
	llm := &testutil.LLM{Script: []testutil.GenResult{
		{Text: `{"hasTimeConstraint": false}`},
	}}

	c := temporal.NewClassifier(llm, log.NewNop())
	c.Classify(context.Background(), "meeting notes from last tuesday")

	require.Len(t, llm.Prompts, 1)
	assert.Contains(t, llm.Prompts[0], `"meeting notes from last tuesday"`)
	assert.Contains(t, llm.Prompts[0], "hasTimeConstraint")
	assert.Contains(t, llm.Prompts[0], "current date")
}
