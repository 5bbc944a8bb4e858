// Package encounter owns the state of one bounded combat engagement: the NPC
// roster, grid positions, turn order, and round counter. State is mutated only
// through its methods so ordering and persistence boundaries stay explicit.
package encounter

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/geometry"
)

// DefaultGridSize is the square grid dimension used when none is given.
const DefaultGridSize = 20

// Status is the encounter lifecycle state. Completed and defeated are both
// terminal; no combatant mutation is permitted after either.
type Status string

const (
	// StatusActive means combat is ongoing.
	StatusActive Status = "active"
	// StatusCompleted means no hostile NPC has hit points left.
	StatusCompleted Status = "completed"
	// StatusDefeated means the player's hit points reached zero.
	StatusDefeated Status = "defeated"
)

var (
	// ErrNotFound is returned when a combatant id is not in the roster.
	ErrNotFound = errors.New("encounter: combatant not found")
	// ErrFinished is returned on mutation attempts after the encounter
	// reached a terminal status.
	ErrFinished = errors.New("encounter: already finished")
)

// Encounter is one combat engagement. Created when the narrative introduces
// hostile creatures, mutated every turn, and kept (never deleted) after it
// reaches a terminal status.
type Encounter struct {
	ID        string                       `json:"id"`
	Status    Status                       `json:"status"`
	NPCs      []*actor.NPC                 `json:"npcs"`
	Positions map[string]geometry.Position `json:"positions"`
	GridSize  int                          `json:"grid_size"`
	Round     int                          `json:"round"`
	TurnOrder []string                     `json:"turn_order"`
	TurnIndex int                          `json:"turn_index"`
	Location  string                       `json:"location,omitempty"`
	Scene     string                       `json:"scene,omitempty"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// New creates an active encounter: positions are computed from the placement
// hints, the round starts at 1, and the turn order is the player followed by
// every NPC in roster insertion order.
func New(npcs []*actor.NPC, location, scene string, hints *PlacementHints) *Encounter {
	now := time.Now().UTC()
	e := &Encounter{
		ID:        uuid.NewString(),
		Status:    StatusActive,
		NPCs:      npcs,
		GridSize:  DefaultGridSize,
		Round:     1,
		TurnIndex: 0,
		Location:  location,
		Scene:     scene,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if hints != nil && hints.GridSize > 0 {
		e.GridSize = hints.GridSize
	}
	e.Positions = ComputeInitialPositions(npcs, hints, e.GridSize)
	e.TurnOrder = buildTurnOrder(npcs, false)
	return e
}

// buildTurnOrder returns the player-first turn order. On the initial build
// every NPC is included; rebuilds keep only living hostiles. Roster insertion
// order is preserved among NPCs.
func buildTurnOrder(npcs []*actor.NPC, livingHostilesOnly bool) []string {
	order := []string{actor.PlayerID}
	for _, n := range npcs {
		if livingHostilesOnly && (!n.IsHostile() || !n.IsAlive()) {
			continue
		}
		order = append(order, n.ID)
	}
	return order
}

// NPC returns the roster entry with the given id, or nil.
func (e *Encounter) NPC(id string) *actor.NPC {
	for _, n := range e.NPCs {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Finished reports whether the encounter reached a terminal status.
func (e *Encounter) Finished() bool {
	return e.Status != StatusActive
}

// ApplyDamage adjusts an NPC's hit points by delta (positive damages, negative
// heals), clamped to [0, MaxHP]. An NPC at 0 HP stays in the roster; surviving
// queries filter on HP > 0 rather than membership.
func (e *Encounter) ApplyDamage(combatantID string, delta int) error {
	if e.Finished() {
		return ErrFinished
	}
	n := e.NPC(combatantID)
	if n == nil {
		return ErrNotFound
	}
	if delta >= 0 {
		n.TakeDamage(delta)
	} else {
		n.Heal(-delta)
	}
	e.touch()
	return nil
}

// AddCondition adds a condition to an NPC. Idempotent and case-insensitive.
func (e *Encounter) AddCondition(combatantID, condition string) error {
	if e.Finished() {
		return ErrFinished
	}
	n := e.NPC(combatantID)
	if n == nil {
		return ErrNotFound
	}
	n.AddCondition(condition)
	e.touch()
	return nil
}

// RemoveCondition removes a condition from an NPC; removing one that is not
// present is a no-op.
func (e *Encounter) RemoveCondition(combatantID, condition string) error {
	if e.Finished() {
		return ErrFinished
	}
	n := e.NPC(combatantID)
	if n == nil {
		return ErrNotFound
	}
	n.RemoveCondition(condition)
	e.touch()
	return nil
}

// CurrentTurn returns the combatant id whose turn it is.
func (e *Encounter) CurrentTurn() string {
	if len(e.TurnOrder) == 0 || e.TurnIndex >= len(e.TurnOrder) {
		return actor.PlayerID
	}
	return e.TurnOrder[e.TurnIndex]
}

// AdvanceTurn moves to the next combatant. Turns belonging to dead or
// non-hostile NPCs are skipped. When the index passes the end of the order,
// the round increments, the order is rebuilt from living hostiles (dead NPCs
// drop out of future rounds) and the index resets to the player's slot.
func (e *Encounter) AdvanceTurn() {
	if e.Finished() {
		return
	}
	for {
		e.TurnIndex++
		if e.TurnIndex >= len(e.TurnOrder) {
			e.Round++
			e.TurnOrder = buildTurnOrder(e.NPCs, true)
			e.TurnIndex = 0
			e.touch()
			return
		}
		n := e.NPC(e.TurnOrder[e.TurnIndex])
		if n == nil || (n.IsHostile() && n.IsAlive()) {
			e.touch()
			return
		}
	}
}

// SurvivingHostiles returns every hostile NPC with hit points left, in roster
// order.
func (e *Encounter) SurvivingHostiles() []*actor.NPC {
	var out []*actor.NPC
	for _, n := range e.NPCs {
		if n.IsHostile() && n.IsAlive() {
			out = append(out, n)
		}
	}
	return out
}

// DefeatedHostiles returns every hostile NPC at 0 HP, in roster order.
func (e *Encounter) DefeatedHostiles() []*actor.NPC {
	var out []*actor.NPC
	for _, n := range e.NPCs {
		if n.IsHostile() && !n.IsAlive() {
			out = append(out, n)
		}
	}
	return out
}

// CheckTermination marks the encounter completed when no hostile NPC has hit
// points left, and reports whether the encounter is now finished. Player
// defeat is a separate path (MarkDefeated), driven by the owner of the player
// document.
func (e *Encounter) CheckTermination() bool {
	if e.Finished() {
		return true
	}
	if len(e.SurvivingHostiles()) == 0 {
		e.Status = StatusCompleted
		e.touch()
		return true
	}
	return false
}

// MarkDefeated transitions the encounter to the defeated terminal state when
// the player's hit points reach zero. No-op if already finished.
func (e *Encounter) MarkDefeated() {
	if e.Finished() {
		return
	}
	e.Status = StatusDefeated
	e.touch()
}

// TotalXP sums the XP value of every defeated hostile.
func (e *Encounter) TotalXP() int {
	total := 0
	for _, n := range e.DefeatedHostiles() {
		total += n.XP
	}
	return total
}

func (e *Encounter) touch() {
	e.UpdatedAt = time.Now().UTC()
}
