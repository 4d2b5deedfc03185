package rag_service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbeddingClientSuccess(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model

		vector := make([]float32, 4)
		vector[0] = 0.5
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": vector},
			},
		})
	}))
	defer srv.Close()

	client := NewEmbeddingClient(srv.URL, "test-key", "text-embedding-3-small")
	embedding, err := client.Embed(context.Background(), "what is vo2max")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedding == nil {
		t.Fatal("expected an embedding vector")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotModel != "text-embedding-3-small" {
		t.Errorf("unexpected model %q", gotModel)
	}
}

func TestEmbeddingClientUpstreamError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "structured provider error",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"Incorrect API key provided"}}`,
			wantMessage: "Incorrect API key provided",
		},
		{
			name:        "opaque provider error",
			status:      http.StatusBadGateway,
			body:        `upstream exploded`,
			wantMessage: "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewEmbeddingClient(srv.URL, "test-key", "text-embedding-3-small")
			_, err := client.Embed(context.Background(), "query")

			var embErr *EmbeddingError
			if !errors.As(err, &embErr) {
				t.Fatalf("expected *EmbeddingError, got %T: %v", err, err)
			}
			if embErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, embErr.StatusCode)
			}
			if embErr.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, embErr.Message)
			}
		})
	}
}

func TestEmbeddingClientMissingKey(t *testing.T) {
	client := NewEmbeddingClient("http://localhost:0", "", "text-embedding-3-small")
	if _, err := client.Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected an error when the API key is not configured")
	}
}
