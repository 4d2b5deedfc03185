package llm_service

import (
	"context"
)

type MockLLMService struct {
	CallLLMFunc func(ctx context.Context, systemPrompt, prompt string) (string, error)
}

func (m *MockLLMService) CallLLM(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if m.CallLLMFunc != nil {
		return m.CallLLMFunc(ctx, systemPrompt, prompt)
	}
	return "mock response", nil
}

type MockStreamingService struct {
	Deltas []string
	Err    error
}

func (m *MockStreamingService) StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, emit func(delta string) error) error {
	return m.StreamMessages(ctx, nil, emit)
}

func (m *MockStreamingService) StreamMessages(ctx context.Context, messages []ChatMessage, emit func(delta string) error) error {
	if m.Err != nil {
		return m.Err
	}
	for _, d := range m.Deltas {
		if err := emit(d); err != nil {
			return err
		}
	}
	return nil
}
