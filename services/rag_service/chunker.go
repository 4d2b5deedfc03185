package rag_service

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the target chunk length in characters.
const DefaultChunkSize = 800

// ChunkText splits text into segments of at most size characters.
// Each boundary is pulled back to the character after the nearest
// sentence-ending period, as long as that period sits past the midpoint
// of the window; otherwise the hard cut stands. Concatenating the
// returned segments reproduces text exactly.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		cut := end
		mid := start + size/2
		if i := strings.LastIndexByte(text[mid:end], '.'); i >= 0 {
			cut = mid + i + 1
		} else {
			// A hard cut must not land inside a multi-byte rune.
			for cut > start && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == start {
				cut = end
			}
		}

		chunks = append(chunks, text[start:cut])
		start = cut
	}

	return chunks
}

// BuildChunks runs ChunkText over a document and attaches filename and
// running index to each segment. Embeddings are filled in later.
func BuildChunks(filename, text string) []Chunk {
	parts := ChunkText(text, DefaultChunkSize)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Filename:   filename,
			ChunkIndex: i,
			ChunkText:  trimmed,
		})
	}
	return chunks
}
