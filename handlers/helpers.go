package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aeropulse/aeropulse-go/services/llm_service"
	"github.com/aeropulse/aeropulse-go/services/rag_service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requirePost answers 405 for anything but POST and reports whether the
// caller should continue.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// upstreamErrorMessage surfaces the provider's own message for known
// upstream failures, and a generic one otherwise.
func upstreamErrorMessage(err error) string {
	var embErr *rag_service.EmbeddingError
	if errors.As(err, &embErr) {
		return embErr.Message
	}
	var httpErr *llm_service.OpenAIHttpError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	var retErr *rag_service.RetrievalError
	if errors.As(err, &retErr) {
		return "similarity search failed"
	}
	return "internal error"
}
