package llm

import (
	"context"
	"fmt"

	"github.com/stoalabs/ratebot/internal/domain"
)

// MockLLM is a deterministic local backend, useful for development without
// credentials.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Complete(_ context.Context, transcript []domain.Message) (string, error) {
	var last string
	for _, msg := range transcript {
		if msg.Role == domain.RoleUser {
			last = msg.Content
		}
	}
	return fmt.Sprintf("You said %q. (transcript length: %d)", last, len(transcript)), nil
}
