// Package modifier aggregates additive attribute and skill bonuses contributed by
// equipped items and other sources, and pushes the totals to attribute and skill sinks.
package modifier

// AttributeKind identifies a derived resource maximum that equipment can raise.
type AttributeKind string

const (
	// AttributeMaxHP is the hit point maximum.
	AttributeMaxHP AttributeKind = "max_hp"
	// AttributeMaxMana is the mana maximum.
	AttributeMaxMana AttributeKind = "max_mana"
	// AttributeMaxStamina is the stamina maximum.
	AttributeMaxStamina AttributeKind = "max_stamina"
)

// SkillKind identifies a trained skill whose effectiveness equipment can raise.
type SkillKind string

const (
	// SkillToughness reduces damage taken.
	SkillToughness SkillKind = "toughness"
	// SkillManaEfficiency lowers the mana cost of abilities.
	SkillManaEfficiency SkillKind = "mana_efficiency"
	// SkillStaminaEfficiency lowers the stamina cost of actions.
	SkillStaminaEfficiency SkillKind = "stamina_efficiency"
	// SkillMeleeCombat is close-quarters weapon skill.
	SkillMeleeCombat SkillKind = "melee_combat"
	// SkillRangedCombat is bow and thrown weapon skill.
	SkillRangedCombat SkillKind = "ranged_combat"
	// SkillMagicalAbility is spellcasting power.
	SkillMagicalAbility SkillKind = "magical_ability"
	// SkillResourceGathering is mining and harvesting yield.
	SkillResourceGathering SkillKind = "resource_gathering"
)

var attributeKinds = []AttributeKind{
	AttributeMaxHP,
	AttributeMaxMana,
	AttributeMaxStamina,
}

var skillKinds = []SkillKind{
	SkillToughness,
	SkillManaEfficiency,
	SkillStaminaEfficiency,
	SkillMeleeCombat,
	SkillRangedCombat,
	SkillMagicalAbility,
	SkillResourceGathering,
}

// AttributeKinds returns every tracked attribute kind in canonical order.
//
// Postcondition: returned slice is a fresh copy.
func AttributeKinds() []AttributeKind {
	out := make([]AttributeKind, len(attributeKinds))
	copy(out, attributeKinds)
	return out
}

// SkillKinds returns every tracked skill kind in canonical order.
//
// Postcondition: returned slice is a fresh copy.
func SkillKinds() []SkillKind {
	out := make([]SkillKind, len(skillKinds))
	copy(out, skillKinds)
	return out
}

// Valid reports whether k is a tracked attribute kind.
func (k AttributeKind) Valid() bool {
	for _, v := range attributeKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Valid reports whether k is a tracked skill kind.
func (k SkillKind) Valid() bool {
	for _, v := range skillKinds {
		if v == k {
			return true
		}
	}
	return false
}
