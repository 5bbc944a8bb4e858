package combat

import (
	"strings"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/dice"
)

// NPCDamage pairs one hostile NPC with its pre-rolled attack result for the
// current turn.
type NPCDamage struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Damage int    `json:"damage"`
	Result Result `json:"result"`
}

// RollContext is the pre-rolled outcome of every surviving hostile's attack
// for one round, frozen before narration.
//
// PerNPC is the single source of truth for damage application: NPCs targeted
// by the player's action this turn may die before their own attack should
// count, so callers re-filter with SurvivorDamage before applying. TotalDamage
// is the unfiltered aggregate, kept for narration context and display only;
// it is never applied.
type RollContext struct {
	Context     string      `json:"context"`
	TotalDamage int         `json:"total_damage"`
	PerNPC      []NPCDamage `json:"per_npc"`
}

// BuildNPCRollContext resolves an attack for every hostile NPC that still has
// hit points, in roster order. The Context string is a ready-to-use block of
// trace lines for the narrator.
func BuildNPCRollContext(npcs []*actor.NPC, playerAC int, src dice.Source) RollContext {
	var rc RollContext
	var lines []string

	for _, npc := range npcs {
		if !npc.IsHostile() || !npc.IsAlive() {
			continue
		}
		result := ResolveNPCTurn(npc, playerAC, src)
		lines = append(lines, result.Trace)
		rc.TotalDamage += result.Damage
		rc.PerNPC = append(rc.PerNPC, NPCDamage{
			ID:     npc.ID,
			Name:   npc.Name,
			Damage: result.Damage,
			Result: result,
		})
	}

	rc.Context = strings.Join(lines, "\n")
	return rc
}

// SurvivorDamage filters a RollContext's per-NPC damage down to NPCs that
// are still alive in the given roster, for application after the player's
// action has already landed.
func (rc RollContext) SurvivorDamage(npcs []*actor.NPC) []NPCDamage {
	alive := make(map[string]bool, len(npcs))
	for _, n := range npcs {
		if n.IsAlive() {
			alive[n.ID] = true
		}
	}

	var out []NPCDamage
	for _, d := range rc.PerNPC {
		if alive[d.ID] {
			out = append(out, d)
		}
	}
	return out
}
