package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/koopa0/secondbrain/internal/log"
)

// chunkCols is the SELECT column list shared by the chunk listing
// queries; scanChunks depends on this order.
const chunkCols = `c.id, c.document_id, c.content, c.embedding, c.chunk_index, c.created_at`

// Store persists documents and chunks in PostgreSQL. Embeddings are
// stored in a pgvector column but similarity scoring happens in the
// search package, matching the exhaustive prototype strategy.
//
// Store is safe for concurrent use by multiple goroutines. All writes
// are single-record inserts; no multi-record transactions are needed.
type Store struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// CreateDocument inserts a new document in pending status and returns
// its id.
func (s *Store) CreateDocument(ctx context.Context, title string, sourceType SourceType, locator string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, title, source_type, source_locator, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		id, title, string(sourceType), locator, string(StatusPending))
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating document %q: %w", title, err)
	}

	s.logger.Debug("document created", "id", id, "title", title, "source_type", sourceType)
	return id, nil
}

// SetDocumentStatus marks a document complete or failed at the end of
// its ingestion run.
func (s *Store) SetDocumentStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("updating document %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating document %s status: document not found", id)
	}
	return nil
}

// CreateChunk persists one embedded chunk.
func (s *Store) CreateChunk(ctx context.Context, c Chunk) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chunks (id, document_id, content, embedding, chunk_index, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.DocumentID, c.Content, pgvector.NewVector(c.Embedding), c.Index, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating chunk %d of document %s: %w", c.Index, c.DocumentID, err)
	}
	return nil
}

// ListAllChunks returns every chunk whose document is not failed, in
// stable storage order.
func (s *Store) ListAllChunks(ctx context.Context) ([]Chunk, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE d.status <> 'failed'
		 ORDER BY c.created_at, c.chunk_index`, chunkCols))
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	return scanChunks(rows)
}

// ListChunksInRange returns chunks whose creation timestamp satisfies
// start <= created_at <= end. Either bound may be nil, meaning
// unbounded on that side. Filtering happens in SQL so most candidates
// are eliminated before scoring.
func (s *Store) ListChunksInRange(ctx context.Context, start, end *time.Time) ([]Chunk, error) {
	var (
		conds = []string{"d.status <> 'failed'"}
		args  []any
	)
	if start != nil {
		args = append(args, *start)
		conds = append(conds, fmt.Sprintf("c.created_at >= $%d", len(args)))
	}
	if end != nil {
		args = append(args, *end)
		conds = append(conds, fmt.Sprintf("c.created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(
		`SELECT %s FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE %s
		 ORDER BY c.created_at, c.chunk_index`,
		chunkCols, strings.Join(conds, " AND "))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing chunks in range: %w", err)
	}
	return scanChunks(rows)
}

// scanChunks drains rows into the domain model.
func scanChunks(rows pgx.Rows) ([]Chunk, error) {
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			c   Chunk
			vec pgvector.Vector
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &vec, &c.Index, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		c.Embedding = vec.Slice()
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunk rows: %w", err)
	}
	return chunks, nil
}
