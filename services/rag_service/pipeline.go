package rag_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Stage is the per-request lifecycle of a RAG answer. A request moves
// IDLE -> RETRIEVING -> PROMPTING -> STREAMING -> DONE, or to FAILED
// from RETRIEVING or from streaming setup. Once streaming has begun the
// request can no longer fail into FAILED.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageRetrieving Stage = "retrieving"
	StagePrompting  Stage = "prompting"
	StageStreaming  Stage = "streaming"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

type Embedder interface {
	Embed(ctx context.Context, text string) (*pgvector.Vector, error)
}

type Retriever interface {
	RetrieveTopK(ctx context.Context, queryEmbedding *pgvector.Vector, k int) ([]Chunk, error)
}

type TemplateFetcher interface {
	Fetch(ctx context.Context) (PromptTemplate, TemplateOrigin)
}

// CompletionStreamer forwards completion deltas to emit as they
// arrive. It returns an error only when the stream could not be opened;
// transport failures after that point end the stream silently.
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, emit func(delta string) error) error
}

// Pipeline wires the online RAG path: embed the query, retrieve the
// top-k chunks, fold them into a prompt and stream the completion.
type Pipeline struct {
	embedder  Embedder
	retriever Retriever
	templates TemplateFetcher
	streamer  CompletionStreamer
	logger    *slog.Logger
}

func NewPipeline(embedder Embedder, retriever Retriever, templates TemplateFetcher, streamer CompletionStreamer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		retriever: retriever,
		templates: templates,
		streamer:  streamer,
		logger:    logger,
	}
}

// Retrieve embeds query and returns its top-k chunks. This is the
// /api/rag-retrieve path; it shares the RETRIEVING stage with Answer.
func (p *Pipeline) Retrieve(ctx context.Context, query string) ([]Chunk, error) {
	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return p.retriever.RetrieveTopK(ctx, embedding, TopKChunks)
}

// Answer runs the full pipeline for query, forwarding each completion
// delta to emit. The returned error is non-nil only when the request
// failed before any content was streamed.
func (p *Pipeline) Answer(ctx context.Context, query string, emit func(delta string) error) error {
	requestID := uuid.NewString()
	stage := StageIdle
	advance := func(next Stage) {
		stage = next
		p.logger.Debug("RAG request stage changed",
			slog.String("request_id", requestID),
			slog.String("stage", string(stage)))
	}

	advance(StageRetrieving)
	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		advance(StageFailed)
		return fmt.Errorf("query embedding failed: %w", err)
	}

	chunks, err := p.retriever.RetrieveTopK(ctx, embedding, TopKChunks)
	if err != nil {
		advance(StageFailed)
		return err
	}

	advance(StagePrompting)
	template, origin := p.templates.Fetch(ctx)
	p.logger.Debug("Prompt template selected",
		slog.String("request_id", requestID),
		slog.String("origin", origin.String()))

	prompt := BuildPrompt(chunks, query, template.UserInstruction)

	advance(StageStreaming)
	if err := p.streamer.StreamCompletion(ctx, template.SystemPrompt, prompt, emit); err != nil {
		advance(StageFailed)
		return fmt.Errorf("completion stream setup failed: %w", err)
	}

	advance(StageDone)
	return nil
}
