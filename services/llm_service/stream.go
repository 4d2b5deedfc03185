package llm_service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"
)

// StreamingService opens streaming chat-completions requests and
// forwards each delta to the caller as it arrives.
type StreamingService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *slog.Logger
}

func NewStreamingService(baseURL, apiKey, model string, logger *slog.Logger) *StreamingService {
	return &StreamingService{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

// StreamCompletion streams a single system+user exchange.
func (s *StreamingService) StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, emit func(delta string) error) error {
	return s.StreamMessages(ctx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, emit)
}

// StreamMessages opens the upstream stream for a full conversation.
// The returned error covers setup only (bad credentials, non-200, no
// body); once frames are flowing, transport failures are logged and end
// the stream without an error.
func (s *StreamingService) StreamMessages(ctx context.Context, messages []ChatMessage, emit func(delta string) error) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenAI API key is not configured")
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":    s.model,
		"messages": messages,
		"stream":   true,
	})
	if err != nil {
		return fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error opening completion stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newHTTPError(resp)
	}

	if err := ForwardEventStream(resp.Body, emit); err != nil {
		s.logger.Error("Completion stream ended abnormally",
			slog.String("error", err.Error()))
	}

	return nil
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ForwardEventStream reads newline-delimited `data: <json>` frames from
// r and forwards each delta's content to emit. A `data: [DONE]` frame
// ends the stream without being forwarded. Malformed JSON frames are
// skipped silently; transport buffering can split frames mid-line and
// the next well-formed frame still parses.
func ForwardEventStream(r io.Reader, emit func(delta string) error) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if line == "data: [DONE]" {
			return nil
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			continue
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if err := emit(chunk.Choices[0].Delta.Content); err != nil {
				return err
			}
		}
	}
}
