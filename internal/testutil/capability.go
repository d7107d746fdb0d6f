package testutil

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/koopa0/secondbrain/internal/gemini"
)

// Embedder is a deterministic, network-free embedding fake. Identical
// text always embeds to the identical vector, and different texts land
// on different directions, which is all retrieval tests need.
type Embedder struct {
	mu sync.Mutex

	// Dim is the embedding width. Defaults to 8.
	Dim int

	// Fixed maps exact texts to preset vectors, letting a test place a
	// query right next to a chosen chunk.
	Fixed map[string][]float32

	// Errs is consumed one entry per call before any embedding is
	// produced; a nil entry means the call succeeds.
	Errs []error

	// Calls records every embedded text in call order.
	Calls []string
}

// Embed implements the embedding capability.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Calls = append(e.Calls, text)

	if len(e.Errs) > 0 {
		err := e.Errs[0]
		e.Errs = e.Errs[1:]
		if err != nil {
			return nil, err
		}
	}

	if v, ok := e.Fixed[text]; ok {
		return v, nil
	}
	return e.hashVector(text), nil
}

// hashVector spreads FNV hashes of the text across the vector, giving
// stable pseudo-random directions.
func (e *Embedder) hashVector(text string) []float32 {
	dim := e.Dim
	if dim <= 0 {
		dim = 8
	}

	vec := make([]float32, dim)
	for i := range vec {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		// Map to [-1, 1).
		vec[i] = float32(int32(h.Sum32())) / float32(1<<31)
	}
	return vec
}

// GenResult is one scripted outcome for the LLM fake.
type GenResult struct {
	Text string
	Err  error
}

// LLM is a scripted generation fake. Each call consumes the next
// scripted result; an exhausted script answers "ok".
type LLM struct {
	mu sync.Mutex

	Script []GenResult

	// Captured inputs, in call order.
	Prompts   []string
	Histories [][]gemini.Turn
}

// Generate implements the generation capability.
func (l *LLM) Generate(_ context.Context, prompt string, history []gemini.Turn) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Prompts = append(l.Prompts, prompt)
	l.Histories = append(l.Histories, append([]gemini.Turn(nil), history...))
	return l.next()
}

// GenerateJSON implements the classifier capability.
func (l *LLM) GenerateJSON(_ context.Context, prompt string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Prompts = append(l.Prompts, prompt)
	return l.next()
}

// CallCount reports how many generation calls were made.
func (l *LLM) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Prompts)
}

func (l *LLM) next() (string, error) {
	if len(l.Script) == 0 {
		return "ok", nil
	}
	r := l.Script[0]
	l.Script = l.Script[1:]
	return r.Text, r.Err
}
