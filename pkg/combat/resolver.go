// Package combat resolves attacks deterministically. Every roll is computed
// and frozen into a Result before any narration happens: the narrator
// describes outcomes, it never decides them.
package combat

import (
	"fmt"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/dice"
)

// DamageComponent is one term of a damage breakdown, kept separate so the
// narrator and UI can show per-source dice.
type DamageComponent struct {
	Label      string `json:"label"`
	Rolls      []int  `json:"rolls"`
	Bonus      int    `json:"bonus"`
	Subtotal   int    `json:"subtotal"`
	DamageType string `json:"damage_type,omitempty"`
}

// Result is a single resolved attack. It is ephemeral: produced fresh per
// action and consumed by narration and state application.
type Result struct {
	ActorID    string            `json:"actor_id"`
	ActorName  string            `json:"actor_name"`
	Die        int               `json:"die"`      // raw d20 value
	Modifier   int               `json:"modifier"` // total attack modifier
	Total      int               `json:"total"`    // Die + Modifier
	Hit        bool              `json:"hit"`
	Critical   bool              `json:"critical"`
	Damage     int               `json:"damage"` // 0 on a miss
	Components []DamageComponent `json:"components,omitempty"`
	Trace      string            `json:"trace"` // one-line summary for narration context
}

// ResolveNPCTurn rolls one NPC attack against the player: d20 + attack bonus
// vs the player's AC, hit iff total >= AC. On a hit the NPC's damage dice are
// rolled once and its flat damage bonus added; a miss deals 0. A natural 20 is
// flagged as a critical on the result but does not change the damage math.
// The trace line is ready for direct inclusion in narration context.
func ResolveNPCTurn(npc *actor.NPC, playerAC int, src dice.Source) Result {
	d20 := dice.D20(src)
	total := d20 + npc.AttackBonus
	hit := total >= playerAC
	crit := d20 == 20

	r := Result{
		ActorID:   npc.ID,
		ActorName: npc.Name,
		Die:       d20,
		Modifier:  npc.AttackBonus,
		Total:     total,
		Hit:       hit,
		Critical:  crit,
	}

	if hit {
		roll := dice.Roll(npc.DamageDice, src)
		damage := roll.Total + npc.DamageBonus
		if damage < 0 {
			damage = 0
		}
		r.Damage = damage
		r.Components = []DamageComponent{{
			Label:    npc.DamageDice,
			Rolls:    roll.Rolls,
			Bonus:    roll.Modifier + npc.DamageBonus,
			Subtotal: damage,
		}}
	}

	r.Trace = fmt.Sprintf("%s: d20=%d%+d=%d vs AC %d → %s — %d damage",
		npc.Name, d20, npc.AttackBonus, total, playerAC, hitLabel(hit), r.Damage)
	return r
}

func hitLabel(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// saveDCBase plus the ability's stat modifier gives the save DC for
// save-type abilities (8 + proficiency 2 + modifier).
const saveDCBase = 10

// ResolvePlayerAbility resolves one use of a player ability against a single
// target NPC.
//
// Attack types:
//   - "" (default): attack roll, d20 + stat modifier vs the target's AC.
//   - auto: hits without a roll.
//   - save: the target rolls d20 + its save bonus against the ability's DC;
//     a successful save halves the damage (rounded down).
//
// Damage is the ability's dice plus the stat modifier plus the flat bonus.
// AOE abilities are resolved once per target by the caller; the geometry
// package decides who is targeted.
func ResolvePlayerAbility(player *actor.PlayerSpec, ability *actor.Ability, target *actor.NPC, src dice.Source) Result {
	statMod := player.StatModifier(ability.StatMod)

	r := Result{
		ActorID:   actor.PlayerID,
		ActorName: player.Name,
		Modifier:  statMod,
	}

	halved := false
	switch ability.AttackType {
	case actor.AttackTypeAuto:
		r.Hit = true
		r.Trace = fmt.Sprintf("%s: %s auto-hits %s", player.Name, ability.Name, target.Name)

	case actor.AttackTypeSave:
		dc := saveDCBase + statMod
		save := dice.D20(src)
		saveTotal := save + target.SaveBonus
		r.Die = save
		r.Hit = true
		halved = saveTotal >= dc
		r.Trace = fmt.Sprintf("%s: %s vs %s save d20=%d%+d=%d vs DC %d → %s",
			player.Name, ability.Name, target.Name, save, target.SaveBonus, saveTotal, dc, saveLabel(halved))

	default:
		d20 := dice.D20(src)
		r.Die = d20
		r.Total = d20 + statMod
		r.Hit = r.Total >= target.AC
		r.Critical = d20 == 20
		r.Trace = fmt.Sprintf("%s: %s d20=%d%+d=%d vs AC %d → %s",
			player.Name, ability.Name, d20, statMod, r.Total, target.AC, hitLabel(r.Hit))
	}

	if r.Hit {
		roll := dice.Roll(ability.DamageDice, src)
		damage := roll.Total + statMod + ability.Bonus
		if halved {
			damage /= 2
		}
		if damage < 0 {
			damage = 0
		}
		r.Damage = damage
		r.Components = []DamageComponent{{
			Label:      ability.Name,
			Rolls:      roll.Rolls,
			Bonus:      roll.Modifier + statMod + ability.Bonus,
			Subtotal:   damage,
			DamageType: ability.DamageType,
		}}
		r.Trace += fmt.Sprintf(" — %d damage", damage)
	}

	return r
}

func saveLabel(saved bool) string {
	if saved {
		return "SAVED"
	}
	return "FAILED"
}
