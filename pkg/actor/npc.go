package actor

import "strings"

// Disposition is a combatant's stance toward the player.
type Disposition string

const (
	DispositionHostile  Disposition = "hostile"
	DispositionNeutral  Disposition = "neutral"
	DispositionFriendly Disposition = "friendly"
)

// NPC is one non-player combatant in an encounter. Instances are spawned from
// SRD monster templates (SRDSlug references the template) and mutated by
// combat resolution. A defeated NPC stays in the roster at 0 HP until the
// encounter ends; callers filter on HP > 0 for surviving combatants.
type NPC struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	AC          int         `json:"ac"`
	HP          int         `json:"hp"`
	MaxHP       int         `json:"max_hp"`
	AttackBonus int         `json:"attack_bonus"`
	DamageDice  string      `json:"damage_dice"`
	DamageBonus int         `json:"damage_bonus"`
	SaveBonus   int         `json:"save_bonus"`
	XP          int         `json:"xp"`
	Disposition Disposition `json:"disposition"`
	Conditions  []string    `json:"conditions,omitempty"`
	SRDSlug     string      `json:"srd_slug,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// NewNPC builds an NPC instance from an SRD-derived template with overrides
// from the encounter. ID comes from overrides (required); any non-zero
// override field replaces the template value.
func NewNPC(template *NPC, overrides *NPC) *NPC {
	if template == nil || overrides == nil {
		return nil
	}

	n := *template
	n.ID = overrides.ID

	if overrides.Name != "" {
		n.Name = overrides.Name
	}
	if overrides.AC != 0 {
		n.AC = overrides.AC
	}
	if overrides.HP != 0 {
		n.HP = overrides.HP
	}
	if overrides.MaxHP != 0 {
		n.MaxHP = overrides.MaxHP
	}
	if overrides.AttackBonus != 0 {
		n.AttackBonus = overrides.AttackBonus
	}
	if overrides.DamageDice != "" {
		n.DamageDice = overrides.DamageDice
	}
	if overrides.DamageBonus != 0 {
		n.DamageBonus = overrides.DamageBonus
	}
	if overrides.SaveBonus != 0 {
		n.SaveBonus = overrides.SaveBonus
	}
	if overrides.XP != 0 {
		n.XP = overrides.XP
	}
	if overrides.Disposition != "" {
		n.Disposition = overrides.Disposition
	}
	if len(overrides.Conditions) > 0 {
		n.Conditions = append([]string(nil), overrides.Conditions...)
	}
	if overrides.Notes != "" {
		n.Notes = overrides.Notes
	}
	if n.Disposition == "" {
		n.Disposition = DispositionHostile
	}
	if n.MaxHP > 0 && n.HP == 0 {
		n.HP = n.MaxHP
	}
	return &n
}

// Clone returns a deep copy.
func (n *NPC) Clone() *NPC {
	c := *n
	c.Conditions = append([]string(nil), n.Conditions...)
	return &c
}

// TakeDamage reduces HP by the given amount. HP never drops below 0.
func (n *NPC) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	n.HP -= amount
	if n.HP < 0 {
		n.HP = 0
	}
}

// Heal raises HP by the given amount. HP never exceeds MaxHP.
func (n *NPC) Heal(amount int) {
	if amount <= 0 {
		return
	}
	n.HP += amount
	if n.HP > n.MaxHP {
		n.HP = n.MaxHP
	}
}

// IsAlive reports whether the NPC still has hit points.
func (n *NPC) IsAlive() bool {
	return n.HP > 0
}

// IsHostile reports whether the NPC attacks the player.
func (n *NPC) IsHostile() bool {
	return n.Disposition == DispositionHostile
}

// AddCondition adds a condition name to the active set. Matching is
// case-insensitive and adding an already-present condition is a no-op.
func (n *NPC) AddCondition(name string) {
	name = strings.TrimSpace(name)
	if name == "" || n.HasCondition(name) {
		return
	}
	n.Conditions = append(n.Conditions, name)
}

// RemoveCondition removes a condition by case-insensitive name. Removing a
// condition that is not present is a no-op.
func (n *NPC) RemoveCondition(name string) {
	for i, c := range n.Conditions {
		if strings.EqualFold(c, name) {
			n.Conditions = append(n.Conditions[:i], n.Conditions[i+1:]...)
			return
		}
	}
}

// HasCondition reports whether a condition is active, case-insensitively.
func (n *NPC) HasCondition(name string) bool {
	for _, c := range n.Conditions {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
