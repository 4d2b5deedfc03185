package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aeropulse/aeropulse-go/services/llm_service"
)

type fakeMessageStreamer struct {
	deltas []string
	got    []llm_service.ChatMessage
}

func (f *fakeMessageStreamer) StreamMessages(ctx context.Context, messages []llm_service.ChatMessage, emit func(delta string) error) error {
	f.got = messages
	for _, d := range f.deltas {
		if err := emit(d); err != nil {
			return err
		}
	}
	return nil
}

func TestAssistantChatHandler(t *testing.T) {
	streamer := &fakeMessageStreamer{deltas: []string{"Start ", "with zone 2."}}
	h := NewAssistantChatHandler(streamer, testLogger())

	body := `{"messages":[{"role":"user","content":"How should I start training?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/assistant-chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Start with zone 2." {
		t.Errorf("unexpected streamed body %q", rec.Body.String())
	}

	if len(streamer.got) != 2 {
		t.Fatalf("expected system prompt plus the user message, got %d messages", len(streamer.got))
	}
	if streamer.got[0].Role != "system" || streamer.got[0].Content == "" {
		t.Errorf("system prompt not prepended: %+v", streamer.got[0])
	}
	if streamer.got[1].Role != "user" {
		t.Errorf("user message not preserved: %+v", streamer.got[1])
	}
}

func TestAssistantChatHandlerStreamsMockDeltas(t *testing.T) {
	streamer := &llm_service.MockStreamingService{Deltas: []string{"Build ", "your base first."}}
	h := NewAssistantChatHandler(streamer, testLogger())

	body := `{"messages":[{"role":"user","content":"Where do I begin?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/assistant-chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Build your base first." {
		t.Errorf("unexpected streamed body %q", rec.Body.String())
	}
}

func TestAssistantChatHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		streamer   MessageStreamer
		wantStatus int
	}{
		{
			name:       "wrong method",
			method:     http.MethodGet,
			streamer:   &llm_service.MockStreamingService{},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid body",
			method:     http.MethodPost,
			body:       "{broken",
			streamer:   &llm_service.MockStreamingService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty conversation",
			method:     http.MethodPost,
			body:       `{"messages":[]}`,
			streamer:   &llm_service.MockStreamingService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "setup failure before streaming",
			method:     http.MethodPost,
			body:       `{"messages":[{"role":"user","content":"hi"}]}`,
			streamer:   &llm_service.MockStreamingService{Err: errors.New("no response body")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAssistantChatHandler(tt.streamer, testLogger())
			req := httptest.NewRequest(tt.method, "/api/assistant-chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDocumentationHandler(t *testing.T) {
	h := NewDocumentationHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/documentation", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "retrieving") {
		t.Errorf("documentation should list the pipeline stages: %s", rec.Body.String())
	}

	post := httptest.NewRequest(http.MethodPost, "/api/documentation", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, post)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}
