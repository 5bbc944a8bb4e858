package actor

import "testing"

func TestModifier(t *testing.T) {
	cases := map[int]int{
		1:  -5,
		8:  -1,
		9:  -1,
		10: 0,
		11: 0,
		12: 1,
		16: 3,
		20: 5,
	}
	for score, want := range cases {
		if got := Modifier(score); got != want {
			t.Errorf("Modifier(%d): expected %d, got %d", score, want, got)
		}
	}
}

func TestPlayerSpec_StatModifier(t *testing.T) {
	p := &PlayerSpec{Stats: Stats5e{Strength: 16, Dexterity: 12}}

	if got := p.StatModifier(StatModStr); got != 3 {
		t.Errorf("str: expected 3, got %d", got)
	}
	if got := p.StatModifier(StatModDex); got != 1 {
		t.Errorf("dex: expected 1, got %d", got)
	}
	if got := p.StatModifier(StatModFinesse); got != 3 {
		t.Errorf("finesse: expected max(str,dex)=3, got %d", got)
	}
	if got := p.StatModifier(StatModNone); got != 0 {
		t.Errorf("none: expected 0, got %d", got)
	}
	if got := p.StatModifier("banana"); got != 0 {
		t.Errorf("unknown selector: expected 0, got %d", got)
	}
}

func TestPlayerSpec_AbilityByName(t *testing.T) {
	p := &PlayerSpec{Abilities: []Ability{
		{Name: "Longsword", DamageDice: "1d8", StatMod: StatModStr},
		{Name: "Fire Bolt", DamageDice: "1d10", StatMod: StatModNone},
	}}

	a, ok := p.AbilityByName("fire bolt")
	if !ok {
		t.Fatal("Expected case-insensitive ability match")
	}
	if a.DamageDice != "1d10" {
		t.Errorf("Expected 1d10, got %s", a.DamageDice)
	}

	if _, ok := p.AbilityByName("dagger"); ok {
		t.Error("Expected no match for unknown ability")
	}
}

func TestPlayerSpec_ApplyDamageClamps(t *testing.T) {
	p := &PlayerSpec{HP: 10, MaxHP: 12}

	p.ApplyDamage(100)
	if p.HP != 0 {
		t.Errorf("Over-damage must clamp to 0, got %d", p.HP)
	}

	p.ApplyDamage(-100) // heal
	if p.HP != 12 {
		t.Errorf("Over-heal must clamp to MaxHP, got %d", p.HP)
	}
}

func TestNewPlayerFromSpec(t *testing.T) {
	spec := &PlayerSpec{
		ID:    "player",
		Name:  "Mira",
		Stats: Stats5e{Strength: 14, Dexterity: 13, Constitution: 12, Intelligence: 10, Wisdom: 11, Charisma: 9},
		HP:    8,
		MaxHP: 12,
		AC:    15,
	}

	p, err := NewPlayerFromSpec(spec)
	if err != nil {
		t.Fatalf("Failed to build player: %v", err)
	}
	if p.Actor == nil {
		t.Fatal("Expected runtime actor to be built")
	}
	if p.Actor.HP() != 8 {
		t.Errorf("Expected current HP 8, got %d", p.Actor.HP())
	}
	if p.Actor.MaxHP() != 12 {
		t.Errorf("Expected max HP 12, got %d", p.Actor.MaxHP())
	}
	if p.Actor.AC() != 15 {
		t.Errorf("Expected AC 15, got %d", p.Actor.AC())
	}
}

func TestNewPlayerFromSpec_NilSpec(t *testing.T) {
	if _, err := NewPlayerFromSpec(nil); err == nil {
		t.Error("Expected error for nil spec")
	}
}
