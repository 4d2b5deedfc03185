package rag_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// RetrievalError wraps failures of the similarity search. The search
// itself is delegated to Postgres; the client only marshals the request
// and unwraps the rows.
type RetrievalError struct {
	Message string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %s: %v", e.Message, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// ChunkStore persists research-paper chunks with their embeddings and
// answers top-k similarity queries against them.
type ChunkStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewChunkStore(db *pgxpool.Pool, logger *slog.Logger) *ChunkStore {
	return &ChunkStore{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the chunk table if it is missing. Chunks are
// immutable once stored and keyed by (filename, chunk_index).
func (s *ChunkStore) EnsureSchema(ctx context.Context) error {
	createSQL := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS research_chunks (
            id serial PRIMARY KEY,
            filename text NOT NULL,
            chunk_index integer NOT NULL,
            chunk_text text NOT NULL,
            embedding vector(%d),
            UNIQUE (filename, chunk_index)
        )
    `, EmbeddingDimensions)

	if _, err := s.db.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create research_chunks table: %w", err)
	}
	return nil
}

// UpsertChunk inserts a chunk, replacing text and embedding when the
// (filename, chunk_index) pair already exists.
func (s *ChunkStore) UpsertChunk(ctx context.Context, chunk Chunk) error {
	query := `
        INSERT INTO research_chunks (filename, chunk_index, chunk_text, embedding)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (filename, chunk_index)
        DO UPDATE SET chunk_text = EXCLUDED.chunk_text, embedding = EXCLUDED.embedding
    `
	_, err := s.db.Exec(ctx, query, chunk.Filename, chunk.ChunkIndex, chunk.ChunkText, chunk.Embedding)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk %s#%d: %w", chunk.Filename, chunk.ChunkIndex, err)
	}
	return nil
}

// RetrieveTopK returns at most k chunks ordered by descending cosine
// similarity to queryEmbedding.
func (s *ChunkStore) RetrieveTopK(ctx context.Context, queryEmbedding *pgvector.Vector, k int) ([]Chunk, error) {
	query := `
        SELECT filename, chunk_index, chunk_text,
               1 - (embedding <=> $1) AS similarity
        FROM research_chunks
        ORDER BY embedding <=> $1
        LIMIT $2
    `
	rows, err := s.db.Query(ctx, query, queryEmbedding, k)
	if err != nil {
		return nil, &RetrievalError{Message: "similarity query failed", Err: err}
	}
	defer rows.Close()

	results := make([]Chunk, 0, k)
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.Filename, &c.ChunkIndex, &c.ChunkText, &c.Similarity); err != nil {
			return nil, &RetrievalError{Message: "failed to scan result row", Err: err}
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &RetrievalError{Message: "result iteration failed", Err: err}
	}

	s.logger.Debug("Similarity search completed",
		slog.Int("requested", k),
		slog.Int("returned", len(results)))

	return results, nil
}

// ListKeys returns the identity of every stored chunk, for the
// consistency-repair utility.
func (s *ChunkStore) ListKeys(ctx context.Context) ([]ChunkKey, error) {
	rows, err := s.db.Query(ctx, `SELECT filename, chunk_index FROM research_chunks ORDER BY filename, chunk_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk keys: %w", err)
	}
	defer rows.Close()

	var keys []ChunkKey
	for rows.Next() {
		var k ChunkKey
		if err := rows.Scan(&k.Filename, &k.ChunkIndex); err != nil {
			return nil, fmt.Errorf("failed to scan chunk key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
