package encounter

import (
	"testing"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/geometry"
)

func TestComputeInitialPositions_PlayerCenter(t *testing.T) {
	positions := ComputeInitialPositions(nil, nil, 20)

	p, ok := positions[actor.PlayerID]
	if !ok {
		t.Fatal("Player must always be placed")
	}
	if p.Row != 10 || p.Col != 10 {
		t.Errorf("Expected player at grid center (10,10), got %+v", p)
	}
}

func TestComputeInitialPositions_SeedsWin(t *testing.T) {
	npcs := []*actor.NPC{{ID: "goblin-1", SRDSlug: "goblin"}}
	hints := &PlacementHints{Seeds: map[string]geometry.Position{
		actor.PlayerID: {Row: 2, Col: 2},
		"goblin-1":     {Row: 5, Col: 5},
	}}
	positions := ComputeInitialPositions(npcs, hints, 20)

	if positions[actor.PlayerID] != (geometry.Position{Row: 2, Col: 2}) {
		t.Errorf("Seeded player position not honored: %+v", positions[actor.PlayerID])
	}
	if positions["goblin-1"] != (geometry.Position{Row: 5, Col: 5}) {
		t.Errorf("Seeded NPC position not honored: %+v", positions["goblin-1"])
	}
}

func TestComputeInitialPositions_RegionMatch(t *testing.T) {
	npcs := []*actor.NPC{
		{ID: "goblin-1", SRDSlug: "goblin"},
		{ID: "goblin-2", SRDSlug: "goblin"},
		{ID: "wolf-1", SRDSlug: "wolf"},
	}
	hints := &PlacementHints{Regions: []Region{
		{Name: "den", NPCSlugs: []string{"Goblin"}, MinRow: 8, MinCol: 14, MaxRow: 9, MaxCol: 15},
	}}
	positions := ComputeInitialPositions(npcs, hints, 20)

	// First free cell row-major inside the den, slug match case-insensitive.
	if positions["goblin-1"] != (geometry.Position{Row: 8, Col: 14}) {
		t.Errorf("Expected goblin-1 at (8,14), got %+v", positions["goblin-1"])
	}
	if positions["goblin-2"] != (geometry.Position{Row: 8, Col: 15}) {
		t.Errorf("Expected goblin-2 at (8,15), got %+v", positions["goblin-2"])
	}
	// No region declares wolves; edge band starts at (1,3).
	if positions["wolf-1"] != (geometry.Position{Row: 1, Col: 3}) {
		t.Errorf("Expected wolf-1 at edge band (1,3), got %+v", positions["wolf-1"])
	}
}

func TestComputeInitialPositions_RegionFullFallsBack(t *testing.T) {
	npcs := []*actor.NPC{
		{ID: "goblin-1", SRDSlug: "goblin"},
		{ID: "goblin-2", SRDSlug: "goblin"},
	}
	hints := &PlacementHints{Regions: []Region{
		{Name: "nook", NPCSlugs: []string{"goblin"}, MinRow: 4, MinCol: 4, MaxRow: 4, MaxCol: 4},
	}}
	positions := ComputeInitialPositions(npcs, hints, 20)

	if positions["goblin-1"] != (geometry.Position{Row: 4, Col: 4}) {
		t.Errorf("Expected goblin-1 to fill the one-cell region, got %+v", positions["goblin-1"])
	}
	if positions["goblin-2"] != (geometry.Position{Row: 1, Col: 3}) {
		t.Errorf("Expected goblin-2 to fall back to the edge band, got %+v", positions["goblin-2"])
	}
}

func TestComputeInitialPositions_EdgeBandOrder(t *testing.T) {
	npcs := []*actor.NPC{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}
	positions := ComputeInitialPositions(npcs, nil, 20)

	// Odd columns from 3 along row 1 first.
	want := map[string]geometry.Position{
		"a": {Row: 1, Col: 3},
		"b": {Row: 1, Col: 5},
		"c": {Row: 1, Col: 7},
	}
	for id, p := range want {
		if positions[id] != p {
			t.Errorf("Expected %s at %+v, got %+v", id, p, positions[id])
		}
	}
}

func TestComputeInitialPositions_Deterministic(t *testing.T) {
	npcs := []*actor.NPC{
		{ID: "goblin-1", SRDSlug: "goblin"},
		{ID: "wolf-1", SRDSlug: "wolf"},
	}
	hints := &PlacementHints{Regions: []Region{
		{Name: "den", NPCSlugs: []string{"goblin"}, MinRow: 8, MinCol: 14, MaxRow: 9, MaxCol: 15},
	}}

	first := ComputeInitialPositions(npcs, hints, 20)
	second := ComputeInitialPositions(npcs, hints, 20)

	if len(first) != len(second) {
		t.Fatalf("Placement not deterministic: %v vs %v", first, second)
	}
	for id, p := range first {
		if second[id] != p {
			t.Errorf("Placement for %s differs across runs: %+v vs %+v", id, p, second[id])
		}
	}
}

func TestComputeInitialPositions_NoSharedCells(t *testing.T) {
	npcs := make([]*actor.NPC, 0, 12)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		npcs = append(npcs, &actor.NPC{ID: id})
	}
	positions := ComputeInitialPositions(npcs, nil, 20)

	seen := make(map[geometry.Position]string)
	for id, p := range positions {
		if other, ok := seen[p]; ok {
			t.Errorf("%s and %s share cell %+v", id, other, p)
		}
		seen[p] = id
	}
	if len(positions) != 13 {
		t.Errorf("Expected 13 placements, got %d", len(positions))
	}
}
