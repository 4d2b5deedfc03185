package handlers

import (
	"net/http"
)

// pipelineDocumentation is the static description served at
// GET /api/documentation. It mirrors the stages the pipeline logs.
var pipelineDocumentation = map[string]interface{}{
	"name":        "aeropulse-rag",
	"description": "Retrieval-augmented answers over VO2Max research papers",
	"stages": []map[string]string{
		{"stage": "retrieving", "description": "Embed the query and fetch the top 5 chunks by cosine similarity"},
		{"stage": "prompting", "description": "Fold chunks and instruction into a single prompt"},
		{"stage": "streaming", "description": "Stream the model's answer token by token"},
	},
	"endpoints": []map[string]string{
		{"method": "POST", "path": "/api/rag-chat", "body": "{query}"},
		{"method": "POST", "path": "/api/rag-retrieve", "body": "{query}"},
		{"method": "POST", "path": "/api/assistant-chat", "body": "{messages}"},
		{"method": "POST", "path": "/api/generate-plans", "body": "VO2MaxData"},
		{"method": "POST", "path": "/api/recommendations", "body": "FormData"},
	},
}

type DocumentationHandler struct{}

func NewDocumentationHandler() *DocumentationHandler {
	return &DocumentationHandler{}
}

func (h *DocumentationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, pipelineDocumentation)
}
