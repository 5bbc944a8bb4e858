package actor

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/jwebster45206/d20"
)

// PlayerID is the reserved combatant id for the player character in
// encounter rosters, position maps and turn orders.
const PlayerID = "player"

// Stats5e represents the six core D&D 5e ability scores.
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility.
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// Modifier returns the 5e ability modifier for a score: (score-10)/2,
// rounded down.
func Modifier(score int) int {
	if score >= 10 {
		return (score - 10) / 2
	}
	return -((11 - score) / 2)
}

// Stat-modifier selectors for abilities.
const (
	StatModStr     = "str"
	StatModDex     = "dex"
	StatModFinesse = "finesse" // higher of str and dex
	StatModNone    = "none"
)

// Attack types for abilities. Empty means a normal attack roll against AC.
const (
	AttackTypeAuto = "auto" // always hits (e.g. magic missile)
	AttackTypeSave = "save" // target rolls a saving throw instead
)

// Ability is one weapon or spell attack available to the player.
type Ability struct {
	Name        string `json:"name"`
	DamageDice  string `json:"damage_dice"`
	StatMod     string `json:"stat_mod,omitempty"`     // str | dex | finesse | none
	Bonus       int    `json:"bonus,omitempty"`        // flat damage bonus
	AttackType  string `json:"attack_type,omitempty"`  // "" (attack roll) | auto | save
	SaveAbility string `json:"save_ability,omitempty"` // ability the target saves with
	Range       string `json:"range,omitempty"`        // SRD range text; AOE shapes parse from it
	Description string `json:"description,omitempty"`
	DamageType  string `json:"damage_type,omitempty"`
}

// PlayerSpec is the serializable combat state of the player character. It is
// the character-document shape the persistence layer reads and partially
// updates (HP, conditions, XP, gold, inventory, flags).
type PlayerSpec struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Class      string          `json:"class,omitempty"`
	Level      int             `json:"level,omitempty"`
	Stats      Stats5e         `json:"stats,omitempty"`
	HP         int             `json:"hp,omitempty"`
	MaxHP      int             `json:"max_hp,omitempty"`
	AC         int             `json:"ac,omitempty"`
	XP         int             `json:"xp,omitempty"`
	Gold       int             `json:"gold,omitempty"`
	Abilities  []Ability       `json:"abilities,omitempty"`
	Conditions []string        `json:"conditions,omitempty"`
	Inventory  []string        `json:"inventory,omitempty"`
	Attributes map[string]int  `json:"attributes,omitempty"` // skills, proficiencies, etc.
	Flags      map[string]bool `json:"flags,omitempty"`      // story flags
}

// Player is the runtime representation of the player character.
type Player struct {
	Spec  *PlayerSpec
	Actor *d20.Actor // built at runtime from PlayerSpec
}

// NewPlayerFromSpec builds a Player from its serialized spec. This is the
// preferred constructor after loading a character document from storage.
func NewPlayerFromSpec(spec *PlayerSpec) (*Player, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	allAttrs := spec.Stats.ToAttributes()
	maps.Copy(allAttrs, spec.Attributes)

	a, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := a.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Player{Spec: spec, Actor: a}, nil
}

// AbilityByName returns the named ability, matched case-insensitively.
func (p *PlayerSpec) AbilityByName(name string) (*Ability, bool) {
	for i := range p.Abilities {
		if strings.EqualFold(p.Abilities[i].Name, name) {
			return &p.Abilities[i], true
		}
	}
	return nil, false
}

// StatModifier resolves an ability's stat-modifier selector against the
// player's scores. Unknown selectors behave like "none".
func (p *PlayerSpec) StatModifier(selector string) int {
	str := Modifier(p.Stats.Strength)
	dex := Modifier(p.Stats.Dexterity)
	switch strings.ToLower(selector) {
	case StatModStr:
		return str
	case StatModDex:
		return dex
	case StatModFinesse:
		if dex > str {
			return dex
		}
		return str
	default:
		return 0
	}
}

// ApplyDamage clamps HP into [0, MaxHP]; negative amounts heal.
func (p *PlayerSpec) ApplyDamage(amount int) {
	p.HP -= amount
	if p.HP < 0 {
		p.HP = 0
	}
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
}

// MarshalJSON serializes the Player back to PlayerSpec shape, reading
// current HP/AC state from the runtime Actor when present.
func (p *Player) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	if p.Actor == nil {
		return json.Marshal(p.Spec)
	}

	spec := *p.Spec
	spec.HP = p.Actor.HP()
	spec.MaxHP = p.Actor.MaxHP()
	spec.AC = p.Actor.AC()
	return json.Marshal(&spec)
}

// UnmarshalJSON reconstructs a Player from JSON and rebuilds its Actor.
func (p *Player) UnmarshalJSON(data []byte) error {
	var spec PlayerSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal player spec: %w", err)
	}

	rebuilt, err := NewPlayerFromSpec(&spec)
	if err != nil {
		return fmt.Errorf("failed to rebuild actor: %w", err)
	}

	p.Spec = rebuilt.Spec
	p.Actor = rebuilt.Actor
	return nil
}
