// Package srd defines the static 5e reference data shapes served by the SRD
// lookup collaborator. Content is read-only rules data keyed by (category,
// slug) and safe to cache for the lifetime of the process.
package srd

import "errors"

// ErrNotFound is returned when no reference entry exists for a
// (category, slug) pair.
var ErrNotFound = errors.New("srd: reference not found")

// Category names the reference data families.
type Category string

const (
	CategoryMonsters   Category = "monsters"
	CategorySpells     Category = "spells"
	CategoryEquipment  Category = "equipment"
	CategoryConditions Category = "conditions"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMonsters, CategorySpells, CategoryEquipment, CategoryConditions:
		return true
	}
	return false
}

// Monster is the SRD stat block subset the combat engine consumes.
type Monster struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	AC           int    `json:"ac"`
	HP           int    `json:"hp"`
	AttackBonus  int    `json:"attack_bonus"`
	DamageDice   string `json:"damage_dice"`
	DamageBonus  int    `json:"damage_bonus"`
	SaveBonus    int    `json:"save_bonus"`
	XP           int    `json:"xp"`
	ChallengeCR  string `json:"challenge_rating,omitempty"`
	Description  string `json:"description,omitempty"`
	PlacementTag string `json:"placement_tag,omitempty"` // region hint for the layout engine
}

// Spell is the SRD spell subset: enough to resolve damage and AOE targeting.
type Spell struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Level       int    `json:"level"`
	Range       string `json:"range"` // AOE shapes parse from this text
	DamageDice  string `json:"damage_dice,omitempty"`
	DamageType  string `json:"damage_type,omitempty"`
	SaveAbility string `json:"save_ability,omitempty"`
	Description string `json:"description,omitempty"`
}

// Equipment is a weapon or item reference entry.
type Equipment struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	DamageDice string `json:"damage_dice,omitempty"`
	DamageType string `json:"damage_type,omitempty"`
	Properties string `json:"properties,omitempty"`
	CostGold   int    `json:"cost_gold,omitempty"`
}

// Condition is a rules condition reference entry.
type Condition struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
