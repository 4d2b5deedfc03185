package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Verifier reconciles the chunks derivable from local extracted text
// files against what the store actually holds. It is a repair tool for
// the offline ingestion path, not part of any request.
type Verifier struct {
	store    *ChunkStore
	embedder Embedder
	logger   *slog.Logger
}

func NewVerifier(store *ChunkStore, embedder Embedder, logger *slog.Logger) *Verifier {
	return &Verifier{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// LocalChunks re-chunks every .txt file in dir and returns the chunks
// keyed the same way the store keys them. The source filename is the
// text file's name with the trailing .txt stripped, matching how the
// extraction utility names its output.
func (v *Verifier) LocalChunks(dir string) (map[ChunkKey]Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	local := make(map[ChunkKey]Chunk)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			v.logger.Error("Failed to read extracted text file",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()))
			continue
		}

		source := SourceNameFor(entry.Name())
		for _, chunk := range BuildChunks(source, string(data)) {
			local[ChunkKey{Filename: chunk.Filename, ChunkIndex: chunk.ChunkIndex}] = chunk
		}
	}

	return local, nil
}

// Missing returns the locally derived chunks absent from the store,
// sorted by filename then index.
func (v *Verifier) Missing(ctx context.Context, local map[ChunkKey]Chunk) ([]Chunk, error) {
	keys, err := v.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[ChunkKey]struct{}, len(keys))
	for _, k := range keys {
		stored[k] = struct{}{}
	}

	var missing []Chunk
	for key, chunk := range local {
		if _, ok := stored[key]; !ok {
			missing = append(missing, chunk)
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Filename != missing[j].Filename {
			return missing[i].Filename < missing[j].Filename
		}
		return missing[i].ChunkIndex < missing[j].ChunkIndex
	})

	return missing, nil
}

// Repair embeds and uploads the given chunks. Failures are logged and
// counted, they do not stop the batch.
func (v *Verifier) Repair(ctx context.Context, missing []Chunk) (uploaded int) {
	for _, chunk := range missing {
		embedding, err := v.embedder.Embed(ctx, chunk.ChunkText)
		if err != nil {
			v.logger.Error("Failed to embed missing chunk",
				slog.String("filename", chunk.Filename),
				slog.Int("chunk_index", chunk.ChunkIndex),
				slog.String("error", err.Error()))
			continue
		}
		chunk.Embedding = embedding

		if err := v.store.UpsertChunk(ctx, chunk); err != nil {
			v.logger.Error("Failed to upload missing chunk",
				slog.String("filename", chunk.Filename),
				slog.Int("chunk_index", chunk.ChunkIndex),
				slog.String("error", err.Error()))
			continue
		}
		uploaded++
	}
	return uploaded
}
