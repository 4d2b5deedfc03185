package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aeropulse/aeropulse-go/services/llm_service"
)

const assistantSystemPrompt = "You are a friendly fitness assistant for a VO2Max training app. " +
	"Keep answers practical and grounded in established training guidance."

// MessageStreamer streams a completion for a full conversation.
type MessageStreamer interface {
	StreamMessages(ctx context.Context, messages []llm_service.ChatMessage, emit func(delta string) error) error
}

type assistantChatRequest struct {
	Messages []llm_service.ChatMessage `json:"messages"`
}

// AssistantChatHandler streams free-form assistant replies without
// retrieval. The conversation arrives whole on every request.
type AssistantChatHandler struct {
	streamer MessageStreamer
	logger   *slog.Logger
}

func NewAssistantChatHandler(streamer MessageStreamer, logger *slog.Logger) *AssistantChatHandler {
	return &AssistantChatHandler{
		streamer: streamer,
		logger:   logger,
	}
}

func (h *AssistantChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req assistantChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "messages are required")
		return
	}

	messages := append([]llm_service.ChatMessage{
		{Role: "system", Content: assistantSystemPrompt},
	}, req.Messages...)

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

	if err := h.streamer.StreamMessages(r.Context(), messages, emit); err != nil {
		h.logger.Error("Assistant stream failed",
			slog.String("error", err.Error()))
		if !started {
			writeJSONError(w, http.StatusInternalServerError, upstreamErrorMessage(err))
		}
		return
	}

	if !started {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}
