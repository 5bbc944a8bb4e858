package encounter

import (
	"testing"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/geometry"
)

func testRoster() []*actor.NPC {
	return []*actor.NPC{
		{ID: "goblin-1", Name: "Goblin", HP: 7, MaxHP: 7, Disposition: actor.DispositionHostile, XP: 50, SRDSlug: "goblin"},
		{ID: "goblin-2", Name: "Goblin", HP: 7, MaxHP: 7, Disposition: actor.DispositionHostile, XP: 50, SRDSlug: "goblin"},
		{ID: "villager-1", Name: "Villager", HP: 4, MaxHP: 4, Disposition: actor.DispositionNeutral},
	}
}

func TestNew(t *testing.T) {
	e := New(testRoster(), "Cragmaw Hideout", "a damp cave mouth", nil)

	if e.ID == "" {
		t.Error("Expected a generated encounter id")
	}
	if e.Status != StatusActive {
		t.Errorf("Expected active status, got %s", e.Status)
	}
	if e.Round != 1 {
		t.Errorf("Expected round 1, got %d", e.Round)
	}
	if e.TurnIndex != 0 {
		t.Errorf("Expected turn index 0, got %d", e.TurnIndex)
	}

	want := []string{actor.PlayerID, "goblin-1", "goblin-2", "villager-1"}
	if len(e.TurnOrder) != len(want) {
		t.Fatalf("Expected turn order %v, got %v", want, e.TurnOrder)
	}
	for i, id := range want {
		if e.TurnOrder[i] != id {
			t.Errorf("Turn order slot %d: expected %s, got %s", i, id, e.TurnOrder[i])
		}
	}

	// Creation must assign every combatant a unique cell.
	seen := make(map[geometry.Position]string)
	for id, p := range e.Positions {
		if other, ok := seen[p]; ok {
			t.Errorf("Combatants %s and %s share cell %+v", id, other, p)
		}
		seen[p] = id
	}
	if len(e.Positions) != 4 {
		t.Errorf("Expected 4 positions, got %d", len(e.Positions))
	}
}

func TestApplyDamage(t *testing.T) {
	e := New(testRoster(), "", "", nil)

	if err := e.ApplyDamage("goblin-1", 5); err != nil {
		t.Fatalf("Failed to apply damage: %v", err)
	}
	if e.NPC("goblin-1").HP != 2 {
		t.Errorf("Expected 2 HP, got %d", e.NPC("goblin-1").HP)
	}

	// Overkill clamps to 0 and the NPC stays in the roster.
	if err := e.ApplyDamage("goblin-1", 100); err != nil {
		t.Fatalf("Failed to apply damage: %v", err)
	}
	if e.NPC("goblin-1").HP != 0 {
		t.Errorf("Expected 0 HP, got %d", e.NPC("goblin-1").HP)
	}
	if len(e.NPCs) != 3 {
		t.Error("Dead NPCs must remain in the roster")
	}

	// Negative delta heals, clamped to MaxHP.
	if err := e.ApplyDamage("goblin-1", -100); err != nil {
		t.Fatalf("Failed to heal: %v", err)
	}
	if e.NPC("goblin-1").HP != 7 {
		t.Errorf("Expected heal to clamp at 7, got %d", e.NPC("goblin-1").HP)
	}

	if err := e.ApplyDamage("dragon-1", 5); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestConditions(t *testing.T) {
	e := New(testRoster(), "", "", nil)

	if err := e.AddCondition("goblin-1", "Prone"); err != nil {
		t.Fatalf("Failed to add condition: %v", err)
	}
	if err := e.AddCondition("goblin-1", "prone"); err != nil {
		t.Fatalf("Duplicate add must be a no-op: %v", err)
	}
	if got := len(e.NPC("goblin-1").Conditions); got != 1 {
		t.Errorf("Expected 1 condition, got %d", got)
	}

	if err := e.RemoveCondition("goblin-1", "PRONE"); err != nil {
		t.Fatalf("Failed to remove condition: %v", err)
	}
	if got := len(e.NPC("goblin-1").Conditions); got != 0 {
		t.Errorf("Expected 0 conditions, got %d", got)
	}

	if err := e.AddCondition("dragon-1", "prone"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAdvanceTurn_SkipsDeadAndNonHostile(t *testing.T) {
	e := New(testRoster(), "", "", nil)
	e.NPC("goblin-1").HP = 0

	e.AdvanceTurn() // from player
	if got := e.CurrentTurn(); got != "goblin-2" {
		t.Errorf("Expected goblin-2 (dead goblin-1 skipped), got %s", got)
	}
}

func TestAdvanceTurn_WrapRebuildsOrder(t *testing.T) {
	e := New(testRoster(), "", "", nil)
	e.NPC("goblin-1").HP = 0

	e.AdvanceTurn() // player -> goblin-2
	e.AdvanceTurn() // goblin-2 -> wrap (villager skipped, end of order)

	if e.Round != 2 {
		t.Errorf("Expected round 2 after wrap, got %d", e.Round)
	}
	if e.TurnIndex != 0 {
		t.Errorf("Expected index reset to player slot, got %d", e.TurnIndex)
	}
	if e.CurrentTurn() != actor.PlayerID {
		t.Errorf("Expected player's turn, got %s", e.CurrentTurn())
	}

	// Rebuilt order keeps only living hostiles after the player.
	want := []string{actor.PlayerID, "goblin-2"}
	if len(e.TurnOrder) != len(want) {
		t.Fatalf("Expected turn order %v, got %v", want, e.TurnOrder)
	}
	for i, id := range want {
		if e.TurnOrder[i] != id {
			t.Errorf("Turn order slot %d: expected %s, got %s", i, id, e.TurnOrder[i])
		}
	}
}

func TestCheckTermination(t *testing.T) {
	e := New(testRoster(), "", "", nil)

	if e.CheckTermination() {
		t.Error("Encounter with living hostiles must not terminate")
	}

	e.NPC("goblin-1").HP = 0
	e.NPC("goblin-2").HP = 0
	// The neutral villager is alive but does not keep the encounter open.
	if !e.CheckTermination() {
		t.Fatal("Encounter with no living hostiles must terminate")
	}
	if e.Status != StatusCompleted {
		t.Errorf("Expected completed status, got %s", e.Status)
	}

	// Terminal state rejects further mutation.
	if err := e.ApplyDamage("villager-1", 1); err != ErrFinished {
		t.Errorf("Expected ErrFinished after completion, got %v", err)
	}
}

func TestMarkDefeated(t *testing.T) {
	e := New(testRoster(), "", "", nil)
	e.MarkDefeated()

	if e.Status != StatusDefeated {
		t.Errorf("Expected defeated status, got %s", e.Status)
	}

	// Defeat is terminal and sticky.
	e.MarkDefeated()
	if !e.CheckTermination() {
		t.Error("A finished encounter reports terminated")
	}
	if e.Status != StatusDefeated {
		t.Errorf("Terminal status must not change, got %s", e.Status)
	}
}

func TestTotalXP(t *testing.T) {
	e := New(testRoster(), "", "", nil)
	e.NPC("goblin-1").HP = 0

	if got := e.TotalXP(); got != 50 {
		t.Errorf("Expected 50 XP from one dead goblin, got %d", got)
	}

	e.NPC("goblin-2").HP = 0
	if got := e.TotalXP(); got != 100 {
		t.Errorf("Expected 100 XP, got %d", got)
	}
}

func TestTwoGoblinScenario(t *testing.T) {
	// A full engagement: the player drops one goblin per round.
	roster := []*actor.NPC{
		{ID: "goblin-1", Name: "Goblin", HP: 7, MaxHP: 7, Disposition: actor.DispositionHostile, XP: 50},
		{ID: "goblin-2", Name: "Goblin", HP: 7, MaxHP: 7, Disposition: actor.DispositionHostile, XP: 50},
	}
	e := New(roster, "roadside ambush", "", nil)

	if err := e.ApplyDamage("goblin-1", 8); err != nil {
		t.Fatalf("Round 1 damage failed: %v", err)
	}
	if e.CheckTermination() {
		t.Fatal("One goblin still stands")
	}
	e.AdvanceTurn() // player -> goblin-2 (goblin-1 skipped)
	if e.CurrentTurn() != "goblin-2" {
		t.Fatalf("Expected goblin-2's turn, got %s", e.CurrentTurn())
	}
	e.AdvanceTurn() // wrap to round 2

	if err := e.ApplyDamage("goblin-2", 7); err != nil {
		t.Fatalf("Round 2 damage failed: %v", err)
	}
	if !e.CheckTermination() {
		t.Fatal("All hostiles down, encounter must complete")
	}
	if e.Status != StatusCompleted || e.Round != 2 {
		t.Errorf("Expected completed in round 2, got %s round %d", e.Status, e.Round)
	}
	if e.TotalXP() != 100 {
		t.Errorf("Expected 100 XP, got %d", e.TotalXP())
	}
}
