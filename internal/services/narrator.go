package services

import (
	"context"

	"github.com/dmassey-dev/crucible/pkg/narration"
)

// Narrator defines the interface for the prose-generation backend. Combat
// mechanics are resolved before any call: the backend narrates results, it
// never decides them.
type Narrator interface {
	// InitModel prepares the backend model on startup.
	InitModel(ctx context.Context, modelName string) error

	// Narrate turns a built message array into prose plus token usage.
	Narrate(ctx context.Context, messages []narration.Message) (*narration.Result, error)
}
