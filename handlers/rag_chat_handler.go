package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// RAGChatHandler streams a RAG answer as chunked text/plain. Errors
// before the first delta become a JSON 500; once bytes have been
// written the stream simply ends.
type RAGChatHandler struct {
	pipeline RAGPipeline
	logger   *slog.Logger
}

func NewRAGChatHandler(pipeline RAGPipeline, logger *slog.Logger) *RAGChatHandler {
	return &RAGChatHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *RAGChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	flusher, _ := w.(http.Flusher)
	started := false

	emit := func(delta string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write([]byte(delta)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	if err := h.pipeline.Answer(r.Context(), req.Query, emit); err != nil {
		h.logger.Error("RAG answer failed",
			slog.String("error", err.Error()))
		if !started {
			writeJSONError(w, http.StatusInternalServerError, upstreamErrorMessage(err))
		}
		// Mid-stream failures leave a truncated body; there is no
		// structured trailing error on a chunked response.
		return
	}

	if !started {
		// The model produced no deltas; still answer 200 with an empty body.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}
