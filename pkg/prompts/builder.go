package prompts

import (
	"fmt"
	"strings"

	"github.com/dmassey-dev/crucible/pkg/narration"
)

// Builder constructs narrator messages from resolved combat facts using a
// fluent interface. It keeps prompt assembly separate from combat state.
type Builder struct {
	facts        *narration.Facts
	history      []narration.Message
	historyLimit int
}

// New creates a builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: 6, // recent turns only; facts carry the state
	}
}

// WithFacts sets the resolved combat facts for the current turn.
func (b *Builder) WithFacts(f *narration.Facts) *Builder {
	b.facts = f
	return b
}

// WithHistory sets prior narration exchanges for continuity.
func (b *Builder) WithHistory(history []narration.Message) *Builder {
	b.history = history
	return b
}

// WithHistoryLimit sets the history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build assembles the final message array for the narrator backend.
func (b *Builder) Build() ([]narration.Message, error) {
	if b.facts == nil {
		return nil, fmt.Errorf("facts are required")
	}

	messages := []narration.Message{{
		Role:    narration.RoleSystem,
		Content: b.systemPrompt(),
	}}

	// Windowed history keeps prose continuity without re-sending old facts.
	history := b.history
	if len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	messages = append(messages, history...)

	messages = append(messages, narration.Message{
		Role:    narration.RoleUser,
		Content: b.factsPrompt(),
	})
	messages = append(messages, narration.Message{
		Role:    narration.RoleSystem,
		Content: b.finalPrompt(),
	})

	return messages, nil
}

func (b *Builder) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString(NarratorSystemPrompt)
	if b.facts.Location != "" {
		sb.WriteString("\n\nLocation: " + b.facts.Location)
	}
	if b.facts.Scene != "" {
		sb.WriteString("\nScene: " + b.facts.Scene)
	}
	return sb.String()
}

func (b *Builder) factsPrompt() string {
	f := b.facts
	var sb strings.Builder

	fmt.Fprintf(&sb, "Round %d.\n", f.Round)
	fmt.Fprintf(&sb, "Player action: %s\n", f.PlayerAction)
	if len(f.PlayerTraces) > 0 {
		sb.WriteString("Player results:\n")
		for _, t := range f.PlayerTraces {
			sb.WriteString("- " + t + "\n")
		}
	}
	if len(f.NPCTraces) > 0 {
		sb.WriteString("Enemy attacks:\n")
		for _, t := range f.NPCTraces {
			sb.WriteString("- " + t + "\n")
		}
	}
	if f.DamageTaken > 0 {
		fmt.Fprintf(&sb, "The player takes %d total damage.\n", f.DamageTaken)
	}
	if len(f.Defeated) > 0 {
		fmt.Fprintf(&sb, "Defeated: %s\n", joinNames(f.Defeated))
	}
	if len(f.Survivors) > 0 {
		fmt.Fprintf(&sb, "Still standing: %s\n", joinNames(f.Survivors))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (b *Builder) finalPrompt() string {
	switch {
	case b.facts.PlayerDown:
		return DefeatPrompt
	case b.facts.EncounterOver:
		return VictoryPrompt
	default:
		return FinalReminderPrompt
	}
}

func joinNames(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = narration.DisplayName(n)
	}
	return strings.Join(out, ", ")
}
