// Command ingest-chunks splits extracted text files into chunks, embeds
// each chunk and upserts it into the vector store, then refreshes the
// similarity index.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aeropulse/aeropulse-go/config"
	"github.com/aeropulse/aeropulse-go/db"
	"github.com/aeropulse/aeropulse-go/services/rag_service"
)

func main() {
	inDir := flag.String("in", "extracted", "directory of extracted .txt files")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	ctx := context.Background()
	store := rag_service.NewChunkStore(pool, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure chunk schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	embedder := rag_service.NewEmbeddingClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel)

	entries, err := os.ReadDir(*inDir)
	if err != nil {
		logger.Error("Failed to read input directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	uploaded, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(*inDir, entry.Name()))
		if err != nil {
			logger.Error("Failed to read text file",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()))
			failed++
			continue
		}

		source := rag_service.SourceNameFor(entry.Name())
		chunks := rag_service.BuildChunks(source, string(data))
		logger.Info("Ingesting document",
			slog.String("source", source),
			slog.Int("chunks", len(chunks)))

		for _, chunk := range chunks {
			embedding, err := embedder.Embed(ctx, chunk.ChunkText)
			if err != nil {
				logger.Error("Failed to embed chunk",
					slog.String("source", source),
					slog.Int("chunk_index", chunk.ChunkIndex),
					slog.String("error", err.Error()))
				failed++
				continue
			}
			chunk.Embedding = embedding

			if err := store.UpsertChunk(ctx, chunk); err != nil {
				logger.Error("Failed to upsert chunk",
					slog.String("source", source),
					slog.Int("chunk_index", chunk.ChunkIndex),
					slog.String("error", err.Error()))
				failed++
				continue
			}
			uploaded++
		}
	}

	indexManager := rag_service.NewIndexManager(pool, logger)
	if err := indexManager.ReindexIfNeeded(ctx); err != nil {
		logger.Error("Failed to refresh vector index", slog.String("error", err.Error()))
	}

	logger.Info("Ingestion run finished",
		slog.Int("uploaded", uploaded),
		slog.Int("failed", failed))
}
