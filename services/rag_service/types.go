package rag_service

import (
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the width of the embedding vectors produced by
// the embedding model and of the vector column in the chunk table.
const EmbeddingDimensions = 1536

// TopKChunks is the number of chunks folded into a RAG prompt.
const TopKChunks = 5

// Chunk is one bounded slice of a source document's extracted text,
// uniquely identified by (Filename, ChunkIndex).
type Chunk struct {
	Filename   string           `json:"filename"`
	ChunkIndex int              `json:"chunk_index"`
	ChunkText  string           `json:"chunk_text"`
	Embedding  *pgvector.Vector `json:"-"`
	Similarity float64          `json:"similarity,omitempty"`
}

// ChunkKey identifies a stored chunk without its payload.
type ChunkKey struct {
	Filename   string
	ChunkIndex int
}
