package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DefaultSystemPrompt = "You are a VO2Max training assistant. Answer using only the supplied " +
		"research excerpts. If the excerpts do not cover the question, say so plainly."

	DefaultUserInstruction = "Answer the question using the research excerpts below. " +
		"Cite the source filename when you rely on an excerpt."
)

// TemplateOrigin records whether a template came from the settings
// table or from the built-in defaults, so callers and tests can tell a
// configured run from a fallback run.
type TemplateOrigin int

const (
	TemplateConfigured TemplateOrigin = iota
	TemplateDefault
)

func (o TemplateOrigin) String() string {
	if o == TemplateConfigured {
		return "configured"
	}
	return "default"
}

type PromptTemplate struct {
	SystemPrompt    string
	UserInstruction string
}

// TemplateSource loads prompt templates from the prompt_settings table.
// Lookup failure is not an error: the caller gets the defaults and the
// origin says so.
type TemplateSource struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewTemplateSource(db *pgxpool.Pool, logger *slog.Logger) *TemplateSource {
	return &TemplateSource{
		db:     db,
		logger: logger,
	}
}

func (t *TemplateSource) Fetch(ctx context.Context) (PromptTemplate, TemplateOrigin) {
	fallback := PromptTemplate{
		SystemPrompt:    DefaultSystemPrompt,
		UserInstruction: DefaultUserInstruction,
	}

	if t.db == nil {
		return fallback, TemplateDefault
	}

	var tmpl PromptTemplate
	err := t.db.QueryRow(ctx, `
        SELECT system_prompt, user_instruction
        FROM prompt_settings
        ORDER BY id DESC
        LIMIT 1
    `).Scan(&tmpl.SystemPrompt, &tmpl.UserInstruction)
	if err != nil {
		t.logger.Warn("Prompt template lookup failed, using defaults",
			slog.String("error", err.Error()))
		return fallback, TemplateDefault
	}

	if tmpl.SystemPrompt == "" {
		tmpl.SystemPrompt = DefaultSystemPrompt
	}
	if tmpl.UserInstruction == "" {
		tmpl.UserInstruction = DefaultUserInstruction
	}

	return tmpl, TemplateConfigured
}

// BuildPrompt assembles the user prompt in fixed order: instruction,
// context block, question. Each chunk is rendered with its 1-based
// position and source filename so the model can cite it.
func BuildPrompt(chunks []Chunk, query, instruction string) string {
	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\n")

	for i, chunk := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Chunk %d (%s):\n%s", i+1, chunk.Filename, chunk.ChunkText)
	}

	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)

	return sb.String()
}
