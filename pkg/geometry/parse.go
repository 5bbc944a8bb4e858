package geometry

import (
	"regexp"
	"strconv"
	"strings"
)

// SRD range strings come in a handful of fixed shapes:
//
//	"Self (15-foot cone)"
//	"Self (30-foot line)"
//	"Self (10-foot-radius sphere)"
//	"Self (10-foot-radius cylinder)"
//	"Self (15-foot cube)"
//	"150 feet (20-foot-radius sphere)"
var (
	selfRangeRegex   = regexp.MustCompile(`(?i)^self \((\d+)-foot(?:-radius)? (cone|line|sphere|cylinder|cube)\)$`)
	rangedAOERegex   = regexp.MustCompile(`(?i)^.+ \((\d+)-foot-radius (sphere|cylinder|cube)\)$`)
	descriptionRegex = regexp.MustCompile(`(?i)(\d+)-foot(?:-radius)? (sphere|cylinder|cube|cone|line)`)
)

// ParseRange extracts an AOE shape from an SRD range string. Self-anchored
// patterns produce OriginSelf; a ranged "<range> (N-foot-radius <shape>)"
// produces OriginTarget. Returns nil when the text describes a single-target
// effect (no AOE pattern).
func ParseRange(text string) *Shape {
	text = strings.TrimSpace(text)
	if m := selfRangeRegex.FindStringSubmatch(text); m != nil {
		return newShape(m[2], m[1], OriginSelf)
	}
	if m := rangedAOERegex.FindStringSubmatch(text); m != nil {
		return newShape(m[2], m[1], OriginTarget)
	}
	return nil
}

// ParseDescription scans free prose (e.g. a spell description) for an AOE
// phrase like "a 20-foot-radius sphere of flame". Description-derived shapes
// are always anchored on the target. Returns nil when nothing matches.
func ParseDescription(text string) *Shape {
	m := descriptionRegex.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return newShape(m[2], m[1], OriginTarget)
}

func newShape(kind, size string, origin OriginKind) *Shape {
	n, err := strconv.Atoi(size)
	if err != nil || n <= 0 {
		return nil
	}
	s := &Shape{
		Kind:   ShapeKind(strings.ToLower(kind)),
		Origin: origin,
		Size:   n,
	}
	if s.Kind == ShapeLine {
		s.Width = DefaultLineWidthFeet
	}
	return s
}
