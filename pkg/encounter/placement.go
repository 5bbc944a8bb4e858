package encounter

import (
	"strings"

	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/geometry"
)

// Region is a named rectangular area of the grid carried over from the
// exploration map, declaring which monster slugs belong inside it.
type Region struct {
	Name     string   `json:"name"`
	NPCSlugs []string `json:"npc_slugs"`
	MinRow   int      `json:"min_row"`
	MinCol   int      `json:"min_col"`
	MaxRow   int      `json:"max_row"`
	MaxCol   int      `json:"max_col"`
}

// contains reports whether the region declares the given monster slug.
func (r Region) contains(slug string) bool {
	for _, s := range r.NPCSlugs {
		if strings.EqualFold(s, slug) {
			return true
		}
	}
	return false
}

// PlacementHints are optional inputs to initial placement: positions already
// known from exploration mode and semantic map regions.
type PlacementHints struct {
	Seeds    map[string]geometry.Position `json:"seeds,omitempty"`
	Regions  []Region                     `json:"regions,omitempty"`
	GridSize int                          `json:"grid_size,omitempty"`
}

// ComputeInitialPositions assigns a grid cell to the player and every NPC.
// Deterministic and idempotent: identical inputs always yield identical
// positions, and no two combatants ever share a cell.
//
// Order of precedence: seeded positions, then player at grid center, then
// region placement by SRD slug, then the edge staging band near the top of
// the grid.
func ComputeInitialPositions(npcs []*actor.NPC, hints *PlacementHints, gridSize int) map[string]geometry.Position {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}

	positions := make(map[string]geometry.Position, len(npcs)+1)
	occupied := make(map[geometry.Position]bool, len(npcs)+1)
	place := func(id string, p geometry.Position) {
		positions[id] = p
		occupied[p] = true
	}

	var regions []Region
	if hints != nil {
		regions = hints.Regions
		for id, p := range hints.Seeds {
			if inBounds(p, gridSize) && !occupied[p] {
				place(id, p)
			}
		}
	}

	if _, ok := positions[actor.PlayerID]; !ok {
		center := geometry.Position{Row: gridSize / 2, Col: gridSize / 2}
		if occupied[center] {
			center = firstFree(occupied, 0, gridSize-1, gridSize)
		}
		place(actor.PlayerID, center)
	}

	for _, n := range npcs {
		if _, ok := positions[n.ID]; ok {
			continue
		}
		if p, ok := regionCell(n, regions, occupied, gridSize); ok {
			place(n.ID, p)
			continue
		}
		place(n.ID, edgeCell(occupied, gridSize))
	}

	return positions
}

// regionCell finds the first free cell, row-major, inside the first region
// declaring the NPC's slug. Returns false when no region matches or the
// matching regions are full.
func regionCell(n *actor.NPC, regions []Region, occupied map[geometry.Position]bool, gridSize int) (geometry.Position, bool) {
	if n.SRDSlug == "" {
		return geometry.Position{}, false
	}
	for _, r := range regions {
		if !r.contains(n.SRDSlug) {
			continue
		}
		for row := r.MinRow; row <= r.MaxRow; row++ {
			for col := r.MinCol; col <= r.MaxCol; col++ {
				p := geometry.Position{Row: row, Col: col}
				if inBounds(p, gridSize) && !occupied[p] {
					return p, true
				}
			}
		}
	}
	return geometry.Position{}, false
}

// edgeCell places an NPC in the staging band near the top edge: rows 1-3 at
// odd columns from 3, then any free cell in rows 0-6, then (0,0) as a last
// resort.
func edgeCell(occupied map[geometry.Position]bool, gridSize int) geometry.Position {
	for row := 1; row <= 3 && row < gridSize; row++ {
		for col := 3; col < gridSize; col += 2 {
			p := geometry.Position{Row: row, Col: col}
			if !occupied[p] {
				return p
			}
		}
	}
	return firstFree(occupied, 0, 6, gridSize)
}

// firstFree scans rows [fromRow, toRow] row-major for an unoccupied in-bounds
// cell, falling back to (0,0).
func firstFree(occupied map[geometry.Position]bool, fromRow, toRow, gridSize int) geometry.Position {
	for row := fromRow; row <= toRow && row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			p := geometry.Position{Row: row, Col: col}
			if !occupied[p] {
				return p
			}
		}
	}
	return geometry.Position{Row: 0, Col: 0}
}

func inBounds(p geometry.Position, gridSize int) bool {
	return p.Row >= 0 && p.Row < gridSize && p.Col >= 0 && p.Col < gridSize
}
