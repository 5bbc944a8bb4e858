// Package narration defines the structured combat facts handed to the
// narrator and the prose result that comes back. Mechanics are resolved and
// frozen before narration: the narrator describes outcomes, it never decides
// them, and no mechanical value is ever re-derived from prose.
package narration

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Message roles follow the common LLM chat API convention.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single chat message sent to the narrator backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage is the token accounting returned with each narration.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Result is the narrator's prose plus its cost accounting.
type Result struct {
	Prose string `json:"prose"`
	Usage Usage  `json:"usage"`
}

// Facts is the structured bundle describing one fully resolved combat turn.
// Every number in it is final before the narrator sees it.
type Facts struct {
	PlayerAction  string   `json:"player_action"`         // what the player attempted, in plain words
	PlayerTraces  []string `json:"player_traces"`         // resolver trace lines for the player's action
	NPCTraces     []string `json:"npc_traces"`            // resolver trace lines for NPC attacks
	DamageTaken   int      `json:"damage_taken"`          // total damage applied to the player this turn
	Survivors     []string `json:"survivors,omitempty"`   // hostile names still standing
	Defeated      []string `json:"defeated,omitempty"`    // hostile names dropped this encounter
	Location      string   `json:"location,omitempty"`    // denormalized location text
	Scene         string   `json:"scene,omitempty"`       // denormalized scene text
	Round         int      `json:"round"`                 // current round number
	EncounterOver bool     `json:"encounter_over"`        // no hostiles remain
	PlayerDown    bool     `json:"player_down,omitempty"` // the player's HP reached zero
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a combatant name or slug for prose: "dire_wolf"
// becomes "Dire Wolf".
func DisplayName(name string) string {
	out := make([]byte, len(name))
	copy(out, name)
	for i := range out {
		if out[i] == '_' || out[i] == '-' {
			out[i] = ' '
		}
	}
	return titleCaser.String(string(out))
}

// Summary renders the facts as a compact human-readable block. Used both as
// narrator context and as the fallback text shown when narration fails.
func (f *Facts) Summary() string {
	s := fmt.Sprintf("Round %d. %s", f.Round, f.PlayerAction)
	for _, t := range f.PlayerTraces {
		s += "\n" + t
	}
	for _, t := range f.NPCTraces {
		s += "\n" + t
	}
	if f.DamageTaken > 0 {
		s += fmt.Sprintf("\nThe player takes %d damage.", f.DamageTaken)
	}
	if f.PlayerDown {
		s += "\nThe player falls."
	} else if f.EncounterOver {
		s += "\nNo hostile creatures remain."
	}
	return s
}
