// Package testutil provides deterministic fakes for the storage and
// Gemini capability boundaries, so unit tests run without PostgreSQL
// or network access.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koopa0/secondbrain/internal/knowledge"
)

// MemStore is an in-memory knowledge store. It satisfies the consumer
// interfaces of both the ingestion pipeline (document/chunk writes)
// and the search strategy (chunk listing), preserving insertion order
// the way the SQL store's stable ordering does.
type MemStore struct {
	mu        sync.Mutex
	Documents map[uuid.UUID]*knowledge.Document
	Chunks    []knowledge.Chunk

	// Error hooks: when non-nil, the corresponding operation fails.
	CreateDocumentErr error
	CreateChunkErr    func(c knowledge.Chunk) error
	ListErr           error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{Documents: make(map[uuid.UUID]*knowledge.Document)}
}

// CreateDocument records a new pending document.
func (m *MemStore) CreateDocument(_ context.Context, title string, sourceType knowledge.SourceType, locator string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateDocumentErr != nil {
		return uuid.Nil, m.CreateDocumentErr
	}

	id := uuid.New()
	m.Documents[id] = &knowledge.Document{
		ID:            id,
		Title:         title,
		SourceType:    sourceType,
		SourceLocator: locator,
		Status:        knowledge.StatusPending,
		CreatedAt:     time.Now(),
	}
	return id, nil
}

// SetDocumentStatus updates a previously created document.
func (m *MemStore) SetDocumentStatus(_ context.Context, id uuid.UUID, status knowledge.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.Documents[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}
	doc.Status = status
	return nil
}

// CreateChunk appends a chunk in call order.
func (m *MemStore) CreateChunk(_ context.Context, c knowledge.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateChunkErr != nil {
		if err := m.CreateChunkErr(c); err != nil {
			return err
		}
	}
	m.Chunks = append(m.Chunks, c)
	return nil
}

// ListAllChunks returns chunks of non-failed documents in insertion
// order.
func (m *MemStore) ListAllChunks(_ context.Context) ([]knowledge.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	out := make([]knowledge.Chunk, 0, len(m.Chunks))
	for _, c := range m.Chunks {
		if m.failed(c.DocumentID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ListChunksInRange filters by creation timestamp, inclusive on both
// ends, with nil meaning unbounded.
func (m *MemStore) ListChunksInRange(_ context.Context, start, end *time.Time) ([]knowledge.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []knowledge.Chunk
	for _, c := range m.Chunks {
		if m.failed(c.DocumentID) {
			continue
		}
		if start != nil && c.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && c.CreatedAt.After(*end) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Status returns the recorded status of a document.
func (m *MemStore) Status(id uuid.UUID) knowledge.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.Documents[id]; ok {
		return doc.Status
	}
	return ""
}

func (m *MemStore) failed(docID uuid.UUID) bool {
	if doc, ok := m.Documents[docID]; ok {
		return doc.Status == knowledge.StatusFailed
	}
	return false
}
