package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aeropulse/aeropulse-go/services/rag_service"
)

// RAGPipeline is the slice of the pipeline the HTTP layer needs.
type RAGPipeline interface {
	Retrieve(ctx context.Context, query string) ([]rag_service.Chunk, error)
	Answer(ctx context.Context, query string, emit func(delta string) error) error
}

type queryRequest struct {
	Query string `json:"query"`
}

// RAGRetrieveHandler answers POST /api/rag-retrieve with the top-k
// chunks for a query, without calling the language model.
type RAGRetrieveHandler struct {
	pipeline RAGPipeline
	logger   *slog.Logger
}

func NewRAGRetrieveHandler(pipeline RAGPipeline, logger *slog.Logger) *RAGRetrieveHandler {
	return &RAGRetrieveHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *RAGRetrieveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "query is required")
		return
	}

	chunks, err := h.pipeline.Retrieve(r.Context(), req.Query)
	if err != nil {
		h.logger.Error("Chunk retrieval failed",
			slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, upstreamErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chunks": chunks,
	})
}
