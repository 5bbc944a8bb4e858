package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmassey-dev/crucible/internal/services"
	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/combat"
	"github.com/dmassey-dev/crucible/pkg/dice"
	"github.com/dmassey-dev/crucible/pkg/encounter"
	"github.com/dmassey-dev/crucible/pkg/geometry"
	"github.com/dmassey-dev/crucible/pkg/narration"
	"github.com/dmassey-dev/crucible/pkg/prompts"
	"github.com/dmassey-dev/crucible/pkg/storage"
)

const narrationTimeout = 30 * time.Second

// ActionRequest is one player action against an encounter.
type ActionRequest struct {
	EncounterID string `json:"encounter_id"`
	Ability     string `json:"ability"`
	TargetID    string `json:"target_id,omitempty"`
	// TargetCell anchors target-origin AOE shapes when no single target
	// is named.
	TargetCell  *geometry.Position `json:"target_cell,omitempty"`
	Description string             `json:"description,omitempty"`
}

// TurnResult is the full outcome of one processed turn. Mechanical fields
// are always populated; Narration is nil when the narrator call failed and
// NarrationError carries the reason.
type TurnResult struct {
	Encounter      *encounter.Encounter `json:"encounter"`
	Player         *actor.PlayerSpec    `json:"player"`
	Facts          *narration.Facts     `json:"facts"`
	Narration      *narration.Result    `json:"narration,omitempty"`
	NarrationError string               `json:"narration_error,omitempty"`
	XPAwarded      int                  `json:"xp_awarded,omitempty"`
}

// TurnProcessor runs the full turn sequence for one player action:
// resolve mechanics, narrate, persist, in that order. Rolls are computed and
// frozen before the narrator is called, and the narrator's output never
// feeds back into mechanics. A narration failure degrades to the mechanical
// summary; a persistence failure aborts the turn as a hard error, since
// retrying would risk applying the same damage twice.
type TurnProcessor struct {
	storage  storage.Storage
	narrator services.Narrator
	locker   *EncounterLocker
	src      dice.Source
	logger   *slog.Logger
}

// NewTurnProcessor creates a turn processor. locker may be nil when turn
// serialization is handled elsewhere (tests, single-session console).
func NewTurnProcessor(storage storage.Storage, narrator services.Narrator, locker *EncounterLocker, logger *slog.Logger) *TurnProcessor {
	return &TurnProcessor{
		storage:  storage,
		narrator: narrator,
		locker:   locker,
		src:      dice.NewSource(),
		logger:   logger,
	}
}

// WithSource overrides the randomness source. Used by tests.
func (p *TurnProcessor) WithSource(src dice.Source) *TurnProcessor {
	p.src = src
	return p
}

// ErrEncounterBusy is returned when another turn holds the encounter lock.
var ErrEncounterBusy = fmt.Errorf("encounter is already processing a turn")

// ErrEncounterNotFound is returned for unknown encounter ids.
var ErrEncounterNotFound = fmt.Errorf("encounter not found")

// ErrPersistence marks a failed write after mechanics were resolved. The
// caller must abort the turn: state may be inconsistent between memory and
// storage, and a blind retry could apply the same damage twice.
var ErrPersistence = fmt.Errorf("persistence failure")

// ProcessTurn runs one full combat turn.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, req ActionRequest) (*TurnResult, error) {
	if p.locker != nil {
		locked, err := p.locker.Acquire(ctx, req.EncounterID)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire encounter lock: %w", err)
		}
		if !locked {
			return nil, ErrEncounterBusy
		}
		defer func() {
			if err := p.locker.Release(ctx, req.EncounterID); err != nil {
				p.logger.Error("Failed to release encounter lock", "error", err, "encounter_id", req.EncounterID)
			}
		}()
	}

	enc, err := p.storage.LoadEncounter(ctx, req.EncounterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load encounter: %w", err)
	}
	if enc == nil {
		return nil, ErrEncounterNotFound
	}
	if enc.Finished() {
		return nil, fmt.Errorf("encounter %s is already %s", enc.ID, enc.Status)
	}

	player, err := p.storage.LoadPlayer(ctx, actor.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player character not found")
	}

	ability, ok := player.AbilityByName(req.Ability)
	if !ok {
		return nil, fmt.Errorf("unknown ability: %s", req.Ability)
	}

	// Pre-roll every surviving hostile's attack before the player's action
	// lands, so a hostile killed this turn never gets its attack.
	npcRolls := combat.BuildNPCRollContext(enc.NPCs, player.AC, p.src)

	facts := &narration.Facts{
		PlayerAction: p.actionSummary(player, ability, req),
		Location:     enc.Location,
		Scene:        enc.Scene,
		Round:        enc.Round,
	}

	// Resolve and apply the player's action.
	targets, err := p.resolveTargets(enc, ability, req)
	if err != nil {
		return nil, err
	}
	for _, npc := range targets {
		result := combat.ResolvePlayerAbility(player, ability, npc, p.src)
		facts.PlayerTraces = append(facts.PlayerTraces, result.Trace)
		if result.Damage > 0 {
			if err := enc.ApplyDamage(npc.ID, result.Damage); err != nil {
				return nil, fmt.Errorf("failed to apply damage to %s: %w", npc.ID, err)
			}
		}
	}

	// Only hostiles that survived the player's action land their attacks.
	damageTaken := 0
	for _, d := range npcRolls.SurvivorDamage(enc.NPCs) {
		facts.NPCTraces = append(facts.NPCTraces, d.Result.Trace)
		damageTaken += d.Damage
	}
	player.ApplyDamage(damageTaken)
	facts.DamageTaken = damageTaken

	if player.HP <= 0 {
		enc.MarkDefeated()
		facts.PlayerDown = true
	}

	xpAwarded := 0
	if enc.CheckTermination() && enc.Status == encounter.StatusCompleted {
		facts.EncounterOver = true
		xpAwarded = enc.TotalXP()
		player.XP += xpAwarded
	}

	for _, n := range enc.SurvivingHostiles() {
		facts.Survivors = append(facts.Survivors, n.Name)
	}
	for _, n := range enc.DefeatedHostiles() {
		facts.Defeated = append(facts.Defeated, n.Name)
	}

	if !enc.Finished() {
		p.advanceRound(enc)
		facts.Round = enc.Round
	}

	result := &TurnResult{
		Encounter: enc,
		Player:    player,
		Facts:     facts,
		XPAwarded: xpAwarded,
	}

	// Narration gates persistence for ordering, but its failure never
	// blocks the already-resolved mechanics.
	p.narrate(ctx, result)

	if err := p.storage.SaveEncounter(ctx, enc.ID, enc); err != nil {
		return nil, fmt.Errorf("%w: encounter %s: %v", ErrPersistence, enc.ID, err)
	}
	if err := p.storage.SavePlayer(ctx, actor.PlayerID, player); err != nil {
		return nil, fmt.Errorf("%w: player: %v", ErrPersistence, err)
	}

	return result, nil
}

// resolveTargets returns the NPCs affected by the ability: the members of an
// AOE cell set when the ability text parses to a shape, or the single named
// target otherwise.
func (p *TurnProcessor) resolveTargets(enc *encounter.Encounter, ability *actor.Ability, req ActionRequest) ([]*actor.NPC, error) {
	shape := geometry.ParseRange(ability.Range)
	if shape == nil {
		shape = geometry.ParseDescription(ability.Description)
	}

	if shape == nil {
		if req.TargetID == "" {
			return nil, fmt.Errorf("ability %s requires a target", ability.Name)
		}
		npc := enc.NPC(req.TargetID)
		if npc == nil {
			return nil, fmt.Errorf("target %s not in encounter", req.TargetID)
		}
		return []*actor.NPC{npc}, nil
	}

	origin, ok := enc.Positions[actor.PlayerID]
	if !ok {
		return nil, fmt.Errorf("player has no position in encounter %s", enc.ID)
	}
	target := origin
	if req.TargetCell != nil {
		target = *req.TargetCell
	} else if req.TargetID != "" {
		t, ok := enc.Positions[req.TargetID]
		if !ok {
			return nil, fmt.Errorf("target %s has no position in encounter %s", req.TargetID, enc.ID)
		}
		target = t
	}

	// Target-anchored shapes (a fireball's impact point) center on the
	// target cell; self-anchored shapes stay on the caster.
	anchor := origin
	if shape.Origin == geometry.OriginTarget {
		anchor = target
	}

	ids := geometry.Targets(*shape, anchor, target, enc.Positions, enc.GridSize)
	var out []*actor.NPC
	for _, id := range ids {
		if id == actor.PlayerID {
			continue
		}
		if npc := enc.NPC(id); npc != nil && npc.IsAlive() {
			out = append(out, npc)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no targets in the area of effect")
	}
	return out, nil
}

func (p *TurnProcessor) actionSummary(player *actor.PlayerSpec, ability *actor.Ability, req ActionRequest) string {
	if req.Description != "" {
		return req.Description
	}
	return fmt.Sprintf("%s uses %s.", player.Name, ability.Name)
}

// narrate fills in the prose for a resolved turn. On failure the mechanical
// summary stands in and the error is recorded, never propagated.
func (p *TurnProcessor) narrate(ctx context.Context, result *TurnResult) {
	messages, err := prompts.New().WithFacts(result.Facts).Build()
	if err != nil {
		result.NarrationError = err.Error()
		return
	}

	narrateCtx, cancel := context.WithTimeout(ctx, narrationTimeout)
	defer cancel()

	prose, err := p.narrator.Narrate(narrateCtx, messages)
	if err != nil {
		p.logger.Warn("Narration failed, serving mechanical summary",
			"error", err, "encounter_id", result.Encounter.ID)
		result.NarrationError = err.Error()
		return
	}
	result.Narration = prose
}

// advanceRound consumes the remainder of the turn order. NPC attacks resolve
// as a block in ProcessTurn, so after the player's action the order advances
// through every remaining slot until it wraps back to the player.
func (p *TurnProcessor) advanceRound(enc *encounter.Encounter) {
	for !enc.Finished() {
		enc.AdvanceTurn()
		if enc.CurrentTurn() == actor.PlayerID {
			return
		}
	}
}
