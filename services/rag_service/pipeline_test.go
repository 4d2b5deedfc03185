package rag_service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (*pgvector.Vector, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := pgvector.NewVector(make([]float32, 4))
	return &v, nil
}

type fakeRetriever struct {
	chunks []Chunk
	err    error
	gotK   int
}

func (f *fakeRetriever) RetrieveTopK(ctx context.Context, queryEmbedding *pgvector.Vector, k int) ([]Chunk, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type fakeTemplates struct{}

func (f *fakeTemplates) Fetch(ctx context.Context) (PromptTemplate, TemplateOrigin) {
	return PromptTemplate{
		SystemPrompt:    "system prompt",
		UserInstruction: "use the excerpts",
	}, TemplateConfigured
}

type fakeStreamer struct {
	gotSystem string
	gotUser   string
	deltas    []string
	setupErr  error
}

func (f *fakeStreamer) StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, emit func(string) error) error {
	if f.setupErr != nil {
		return f.setupErr
	}
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	for _, d := range f.deltas {
		if err := emit(d); err != nil {
			return err
		}
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPipelineAnswer(t *testing.T) {
	retriever := &fakeRetriever{
		chunks: []Chunk{
			{Filename: "paper1.pdf", ChunkIndex: 0, ChunkText: "VO2Max measures aerobic capacity."},
		},
	}
	streamer := &fakeStreamer{deltas: []string{"VO2Max ", "is aerobic capacity."}}
	p := NewPipeline(&fakeEmbedder{}, retriever, &fakeTemplates{}, streamer, testLogger())

	var out strings.Builder
	err := p.Answer(context.Background(), "What is VO2max?", func(delta string) error {
		out.WriteString(delta)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.String() != "VO2Max is aerobic capacity." {
		t.Errorf("unexpected streamed output %q", out.String())
	}
	if retriever.gotK != TopKChunks {
		t.Errorf("expected top-k of %d, got %d", TopKChunks, retriever.gotK)
	}
	if streamer.gotSystem != "system prompt" {
		t.Errorf("system prompt not forwarded, got %q", streamer.gotSystem)
	}
	if !strings.HasPrefix(streamer.gotUser, "use the excerpts") {
		t.Errorf("prompt should start with the instruction, got %q", streamer.gotUser)
	}
	if !strings.Contains(streamer.gotUser, "paper1.pdf") ||
		!strings.Contains(streamer.gotUser, "Question: What is VO2max?") {
		t.Errorf("prompt missing chunk or question:\n%s", streamer.gotUser)
	}
}

func TestPipelineAnswerFailures(t *testing.T) {
	tests := []struct {
		name      string
		embedder  *fakeEmbedder
		retriever *fakeRetriever
		streamer  *fakeStreamer
	}{
		{
			name:      "embedding failure",
			embedder:  &fakeEmbedder{err: errors.New("embed down")},
			retriever: &fakeRetriever{},
			streamer:  &fakeStreamer{},
		},
		{
			name:      "retrieval failure",
			embedder:  &fakeEmbedder{},
			retriever: &fakeRetriever{err: &RetrievalError{Message: "similarity query failed", Err: errors.New("db down")}},
			streamer:  &fakeStreamer{},
		},
		{
			name:      "stream setup failure",
			embedder:  &fakeEmbedder{},
			retriever: &fakeRetriever{},
			streamer:  &fakeStreamer{setupErr: errors.New("no response body")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(tt.embedder, tt.retriever, &fakeTemplates{}, tt.streamer, testLogger())
			emitted := false
			err := p.Answer(context.Background(), "query", func(string) error {
				emitted = true
				return nil
			})
			if err == nil {
				t.Fatal("expected an error")
			}
			if emitted {
				t.Error("no content should be emitted on a failed request")
			}
		})
	}
}

func TestPipelineRetrieve(t *testing.T) {
	retriever := &fakeRetriever{
		chunks: []Chunk{
			{Filename: "paper1.pdf", ChunkIndex: 0, ChunkText: "a"},
			{Filename: "paper2.pdf", ChunkIndex: 1, ChunkText: "b"},
		},
	}
	p := NewPipeline(&fakeEmbedder{}, retriever, &fakeTemplates{}, &fakeStreamer{}, testLogger())

	chunks, err := p.Retrieve(context.Background(), "What is VO2max?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if retriever.gotK != TopKChunks {
		t.Errorf("expected top-k of %d, got %d", TopKChunks, retriever.gotK)
	}
}
