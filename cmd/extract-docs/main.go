// Command extract-docs converts a directory of research papers (PDF,
// DOCX or saved HTML) into plain-text files for chunking. Files whose
// output already exists are skipped, so re-runs only pick up new papers.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aeropulse/aeropulse-go/services/rag_service"
)

func main() {
	inDir := flag.String("in", "papers", "directory of source documents")
	outDir := flag.String("out", "extracted", "directory for extracted .txt files")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	extractor := rag_service.NewDocumentExtractor(logger)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("Failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	entries, err := os.ReadDir(*inDir)
	if err != nil {
		logger.Error("Failed to read input directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	extracted, skipped, failed := 0, 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".docx" && ext != ".html" {
			continue
		}

		outName := rag_service.ExtractedTextName(entry.Name())
		outPath := filepath.Join(*outDir, outName)
		if _, err := os.Stat(outPath); err == nil {
			skipped++
			continue
		}

		data, err := os.ReadFile(filepath.Join(*inDir, entry.Name()))
		if err != nil {
			logger.Error("Failed to read document",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()))
			failed++
			continue
		}

		var text string
		switch ext {
		case ".pdf":
			text, err = extractor.ExtractTextFromPDF(data)
		case ".docx":
			text, err = extractor.ExtractTextFromWord(data)
		case ".html":
			text, err = extractor.ExtractTextFromHTML(data)
		}
		if err != nil {
			// One bad file never aborts the batch
			logger.Error("Extraction failed",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()))
			failed++
			continue
		}

		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			logger.Error("Failed to write extracted text",
				slog.String("file", outName),
				slog.String("error", err.Error()))
			failed++
			continue
		}
		extracted++
	}

	logger.Info("Extraction run finished",
		slog.Int("extracted", extracted),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed))
}
