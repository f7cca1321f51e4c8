package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Completer is the model boundary. The production deployment plugs a hosted
// LLM client in here; tests use a stub.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type AssistantResponse struct {
	Text         string `json:"text"`
	TokensApprox int    `json:"tokens_approx"`
}

type AssistRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

// NoopCompleter is wired when no model provider is configured. It answers
// every prompt with a fixed notice instead of failing the endpoint.
type NoopCompleter struct{}

func (NoopCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return `{"text": "The clinical assistant is not configured for this deployment.", "tokens_approx": 0}`, nil
}

type Service struct {
	completer Completer
}

func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// Assist runs one clinical-assistant completion. There is no retry: a model
// failure surfaces to the caller immediately, and nothing from the exchange
// is persisted.
func (s *Service) Assist(ctx context.Context, orgID uuid.UUID, req *AssistRequest) (*AssistantResponse, error) {
	systemContext := req.Context
	if systemContext == "" {
		systemContext = "No additional context"
	}

	prompt := fmt.Sprintf(
		"You are a clinical AI assistant for OmniClinic.\n"+
			"System Context: %s\n"+
			"User Request: %s\n"+
			`Return response in STRICT JSON format: { "text": "your response", "tokens_approx": 0 }`,
		systemContext, req.Prompt,
	)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("assistant completion failed: %w", err)
	}

	var resp AssistantResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		// Models do not always honor the JSON instruction; fall back to the
		// raw text with a rough token estimate.
		text := strings.TrimSpace(raw)
		return &AssistantResponse{Text: text, TokensApprox: len(text) / 4}, nil
	}
	return &resp, nil
}
