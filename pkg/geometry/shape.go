// Package geometry computes area-of-effect targeting on the encounter grid:
// which cells an AOE shape covers and which combatants stand in them. Shape
// parameters are parsed out of SRD range/description text.
package geometry

// FeetPerCell is the grid scale. SRD distances are expressed in feet and
// converted to cells by integer division.
const FeetPerCell = 5

// ShapeKind identifies the AOE geometry variant.
type ShapeKind string

const (
	ShapeSphere   ShapeKind = "sphere"
	ShapeCube     ShapeKind = "cube"
	ShapeCylinder ShapeKind = "cylinder"
	ShapeCone     ShapeKind = "cone"
	ShapeLine     ShapeKind = "line"
)

// OriginKind says where the shape is anchored: on the caster or on the
// targeted cell.
type OriginKind string

const (
	OriginSelf   OriginKind = "self"
	OriginTarget OriginKind = "target"
)

// DefaultLineWidthFeet is the implicit width of a line effect when the source
// text does not specify one.
const DefaultLineWidthFeet = 5

// Shape is a parsed AOE descriptor. Size is the radius (sphere, cube,
// cylinder) or length (cone, line) in feet. Width applies to lines only.
// Shapes are ephemeral: computed per action, never persisted.
type Shape struct {
	Kind   ShapeKind  `json:"kind"`
	Origin OriginKind `json:"origin"`
	Size   int        `json:"size"`
	Width  int        `json:"width,omitempty"`
}

// Position is an integer cell on the square encounter grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
