package services

import (
	"context"
	"sync"

	"github.com/dmassey-dev/crucible/pkg/narration"
)

// MockNarrator is a mock implementation of Narrator for testing.
type MockNarrator struct {
	NarrateFunc func(ctx context.Context, messages []narration.Message) (*narration.Result, error)

	// Track calls for testing
	NarrateCalls [][]narration.Message

	mu sync.Mutex
}

// Ensure MockNarrator implements Narrator interface
var _ Narrator = (*MockNarrator)(nil)

// NewMockNarrator creates a new mock narrator.
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{}
}

// InitModel mocks model initialization.
func (m *MockNarrator) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// Narrate returns canned prose, or delegates to NarrateFunc if set.
func (m *MockNarrator) Narrate(ctx context.Context, messages []narration.Message) (*narration.Result, error) {
	m.mu.Lock()
	m.NarrateCalls = append(m.NarrateCalls, messages)
	fn := m.NarrateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}

	return &narration.Result{
		Prose: "Steel rings against steel as the melee grinds on.",
		Usage: narration.Usage{InputTokens: 100, OutputTokens: 20},
	}, nil
}

// SetError configures the mock to fail every narration with err.
func (m *MockNarrator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NarrateFunc = func(ctx context.Context, messages []narration.Message) (*narration.Result, error) {
		return nil, err
	}
}

// CallCount returns how many narrations were requested.
func (m *MockNarrator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.NarrateCalls)
}
