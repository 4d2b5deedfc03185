// Command verify-chunks reconciles locally chunked text files against
// the vector store, reporting (filename, chunk_index) pairs that never
// made it in, and optionally re-uploading them after confirmation.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
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
	embedder := rag_service.NewEmbeddingClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel)
	verifier := rag_service.NewVerifier(store, embedder, logger)

	local, err := verifier.LocalChunks(*inDir)
	if err != nil {
		logger.Error("Failed to derive local chunks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	missing, err := verifier.Missing(ctx, local)
	if err != nil {
		logger.Error("Failed to reconcile against the store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if len(missing) == 0 {
		fmt.Printf("All %d local chunks are present in the store.\n", len(local))
		return
	}

	fmt.Printf("%d of %d local chunks are missing from the store:\n", len(missing), len(local))
	for _, chunk := range missing {
		fmt.Printf("  %s #%d\n", chunk.Filename, chunk.ChunkIndex)
	}

	fmt.Print("Re-embed and upload the missing chunks? [y/N] ")
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.TrimSpace(strings.ToLower(answer)) != "y" {
		fmt.Println("Aborted.")
		return
	}

	uploaded := verifier.Repair(ctx, missing)
	fmt.Printf("Uploaded %d of %d missing chunks.\n", uploaded, len(missing))
}
