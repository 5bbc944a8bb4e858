package geometry

import (
	"math"
	"sort"
)

// Cells returns every in-bounds grid cell covered by shape. The origin
// argument is the anchor cell (caster for OriginSelf, impact point for
// OriginTarget); target gives cone/line shapes their direction and is ignored
// for radial shapes.
//
// Radial shapes (sphere, cube, cylinder) cover the Chebyshev ball around the
// origin, origin cell included. Cones cover a forward arc of roughly 60
// degrees half-angle; lines cover a direction-aligned strip. Both exclude the
// origin cell and are empty when target equals origin (no direction).
func Cells(shape Shape, origin, target Position, gridSize int) []Position {
	if shape.Size <= 0 || gridSize <= 0 {
		return nil
	}
	radius := shape.Size / FeetPerCell
	if radius < 1 {
		radius = 1
	}

	switch shape.Kind {
	case ShapeSphere, ShapeCube, ShapeCylinder:
		return chebyshevBall(origin, radius, gridSize)
	case ShapeCone:
		return coneCells(origin, target, radius, gridSize)
	case ShapeLine:
		widthCells := shape.Width / FeetPerCell
		if widthCells < 1 {
			widthCells = 1
		}
		return lineCells(origin, target, radius, widthCells, gridSize)
	default:
		return nil
	}
}

// Targets returns the ids of combatants whose position falls inside the
// shape's cell set, in sorted order. A combatant standing on the origin cell
// of a radial shape is the impact point and is included; cone and line origin
// exclusion is purely geometric.
func Targets(shape Shape, origin, target Position, positions map[string]Position, gridSize int) []string {
	cells := Cells(shape, origin, target, gridSize)
	covered := make(map[Position]bool, len(cells))
	for _, c := range cells {
		covered[c] = true
	}

	var ids []string
	for id, pos := range positions {
		if covered[pos] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func inBounds(p Position, gridSize int) bool {
	return p.Row >= 0 && p.Row < gridSize && p.Col >= 0 && p.Col < gridSize
}

// chebyshevBall is every cell within radius king-moves of center, center
// included, clipped to the grid.
func chebyshevBall(center Position, radius, gridSize int) []Position {
	var cells []Position
	for row := center.Row - radius; row <= center.Row+radius; row++ {
		for col := center.Col - radius; col <= center.Col+radius; col++ {
			p := Position{Row: row, Col: col}
			if inBounds(p, gridSize) {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

// coneHalfAngleCos is the normalized-dot-product threshold for cone
// membership: 0.5 admits cells within ~60 degrees of the direction vector.
const coneHalfAngleCos = 0.5

func coneCells(origin, target Position, length, gridSize int) []Position {
	dirRow := float64(target.Row - origin.Row)
	dirCol := float64(target.Col - origin.Col)
	dirLen := math.Hypot(dirRow, dirCol)
	if dirLen == 0 {
		return nil
	}
	dirRow /= dirLen
	dirCol /= dirLen

	var cells []Position
	for row := origin.Row - length; row <= origin.Row+length; row++ {
		for col := origin.Col - length; col <= origin.Col+length; col++ {
			p := Position{Row: row, Col: col}
			if p == origin || !inBounds(p, gridSize) {
				continue
			}
			dRow := float64(row - origin.Row)
			dCol := float64(col - origin.Col)
			dist := math.Hypot(dRow, dCol)
			if dist > float64(length) {
				continue
			}
			dot := (dRow*dirRow + dCol*dirCol) / dist
			if dot > coneHalfAngleCos {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

func lineCells(origin, target Position, length, width, gridSize int) []Position {
	dirRow := float64(target.Row - origin.Row)
	dirCol := float64(target.Col - origin.Col)
	dirLen := math.Hypot(dirRow, dirCol)
	if dirLen == 0 {
		return nil
	}
	dirRow /= dirLen
	dirCol /= dirLen
	halfWidth := float64(width) / 2

	var cells []Position
	for row := origin.Row - length; row <= origin.Row+length; row++ {
		for col := origin.Col - length; col <= origin.Col+length; col++ {
			p := Position{Row: row, Col: col}
			if p == origin || !inBounds(p, gridSize) {
				continue
			}
			dRow := float64(row - origin.Row)
			dCol := float64(col - origin.Col)
			// Projection along the direction and distance perpendicular to it.
			along := dRow*dirRow + dCol*dirCol
			if along <= 0 || along > float64(length) {
				continue
			}
			perp := math.Abs(dRow*dirCol - dCol*dirRow)
			if perp <= halfWidth {
				cells = append(cells, p)
			}
		}
	}
	return cells
}
