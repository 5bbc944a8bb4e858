package actor

import "github.com/dmassey-dev/crucible/pkg/srd"

// TemplateFromMonster converts an SRD monster stat block into an NPC
// template. The caller supplies the instance ID and overrides via NewNPC.
func TemplateFromMonster(m *srd.Monster) *NPC {
	return &NPC{
		Name:        m.Name,
		AC:          m.AC,
		HP:          m.HP,
		MaxHP:       m.HP,
		AttackBonus: m.AttackBonus,
		DamageDice:  m.DamageDice,
		DamageBonus: m.DamageBonus,
		SaveBonus:   m.SaveBonus,
		XP:          m.XP,
		Disposition: DispositionHostile,
		SRDSlug:     m.Slug,
	}
}
