package chat

import (
	"fmt"
	"strings"

	"github.com/koopa0/secondbrain/internal/knowledge"
)

const promptTemplate = `You are a "Second Brain" AI assistant.
Use the provided CONTEXT to answer the user's question.
If the answer is not in the context, say you don't know based on the documents.
Always cite the source (e.g. [Document Title]) if possible.

CONTEXT:
%s

USER QUESTION:
%s`

// buildPrompt augments the user question with retrieved chunk text.
// Chunks appear in retrieval order, most similar first.
func buildPrompt(question string, chunks []knowledge.ScoredChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return fmt.Sprintf(promptTemplate, strings.Join(parts, "\n\n"), question)
}
