// Package dice parses dice-notation strings and produces randomized totals
// with a per-die breakdown. It is the leaf dependency of the combat engine.
package dice

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

// Source is the randomness provider for dice rolls. Production code uses
// NewSource; tests substitute a deterministic implementation.
type Source interface {
	// Intn returns a uniform random int in [0, n). n must be > 0.
	Intn(n int) int
}

type randSource struct{}

func (randSource) Intn(n int) int { return rand.IntN(n) }

// NewSource returns a Source backed by math/rand/v2.
func NewSource() Source {
	return randSource{}
}

// FallbackExpression is rolled in place of a malformed expression. Dice
// strings can originate from LLM-generated content, so a bad expression
// degrades to a small roll instead of interrupting the caller.
const FallbackExpression = "1d4"

// maxDicePerTerm caps runaway counts from generated content.
const maxDicePerTerm = 100

// Result is the outcome of rolling one dice expression.
type Result struct {
	Expression string `json:"expression"`        // expression actually rolled
	Rolls      []int  `json:"rolls"`             // individual die results, in roll order
	Modifier   int    `json:"modifier"`          // sum of flat modifiers (may be negative)
	Total      int    `json:"total"`             // signed sum of dice plus Modifier
	Fallback   bool   `json:"fallback,omitempty"` // input was malformed and FallbackExpression was used
}

// term is one signed component of an expression: either a dice group or a
// flat modifier.
type term struct {
	sign  int
	count int // 0 for a flat modifier
	sides int
	flat  int
}

var diceTermRegex = regexp.MustCompile(`^(\d+)d(\d+)$`)

// parse splits an expression like "2d6+1d4-2" into signed terms.
// Returns ok=false if any token is unrecognizable.
func parse(expression string) ([]term, bool) {
	s := strings.ToLower(strings.ReplaceAll(expression, " ", ""))
	if s == "" {
		return nil, false
	}

	var terms []term
	sign := 1
	start := 0
	// Append a trailing '+' sentinel so the last token flushes uniformly.
	s += "+"
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '+' && c != '-' {
			continue
		}
		tok := s[start:i]
		if tok == "" {
			// Leading sign only; anything else (e.g. "2d6++3") is malformed.
			if i != 0 {
				return nil, false
			}
		} else if m := diceTermRegex.FindStringSubmatch(tok); m != nil {
			count, err1 := strconv.Atoi(m[1])
			sides, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil || count < 1 || count > maxDicePerTerm || sides < 1 {
				return nil, false
			}
			terms = append(terms, term{sign: sign, count: count, sides: sides})
		} else if flat, err := strconv.Atoi(tok); err == nil {
			terms = append(terms, term{sign: sign, flat: flat})
		} else {
			return nil, false
		}
		if c == '-' {
			sign = -1
		} else {
			sign = 1
		}
		start = i + 1
	}

	if len(terms) == 0 {
		return nil, false
	}
	// An expression with no dice at all ("3+2") is not a roll.
	hasDice := false
	for _, t := range terms {
		if t.count > 0 {
			hasDice = true
		}
	}
	if !hasDice {
		return nil, false
	}
	return terms, true
}

// Roll evaluates a dice expression using src. Malformed input is replaced by
// FallbackExpression and flagged on the result rather than returned as an
// error.
func Roll(expression string, src Source) Result {
	terms, ok := parse(expression)
	result := Result{Expression: expression}
	if !ok {
		result.Expression = FallbackExpression
		result.Fallback = true
		terms, _ = parse(FallbackExpression)
	}

	for _, t := range terms {
		if t.count == 0 {
			result.Modifier += t.sign * t.flat
			continue
		}
		for i := 0; i < t.count; i++ {
			face := src.Intn(t.sides) + 1
			result.Rolls = append(result.Rolls, face)
			result.Total += t.sign * face
		}
	}
	result.Total += result.Modifier
	return result
}

// Valid reports whether expression parses as dice notation.
func Valid(expression string) bool {
	_, ok := parse(expression)
	return ok
}

// D20 rolls a single twenty-sided die.
func D20(src Source) int {
	return src.Intn(20) + 1
}
