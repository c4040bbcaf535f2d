// Package skills tracks per-skill experience and level, plus the equipment bonus
// pushed by the modifier aggregator.
package skills

import (
	"math"

	"github.com/cory-johannsen/gearcore/internal/game/modifier"
)

const (
	// BaseXPForLevel2 is the experience needed to leave level 1.
	BaseXPForLevel2 = 100.0
	// XPMultiplierPerLevel scales the cost of each successive level.
	XPMultiplierPerLevel = 1.5
)

type skill struct {
	xp    float64
	level int
	bonus float64
}

// Skills satisfies modifier.SkillSink.
// It is not safe for concurrent use.
type Skills struct {
	skills map[modifier.SkillKind]*skill
}

// New returns Skills with every tracked skill at level 1 and no experience.
func New() *Skills {
	s := &Skills{skills: make(map[modifier.SkillKind]*skill)}
	for _, k := range modifier.SkillKinds() {
		s.skills[k] = &skill{level: 1}
	}
	return s
}

// LevelForXP returns the level reached with xp accumulated experience.
// Level 1 lasts until BaseXPForLevel2; each later level costs XPMultiplierPerLevel
// times the one before.
func LevelForXP(xp float64) int {
	level := 1
	required := BaseXPForLevel2
	accumulated := 0.0
	for accumulated+required <= xp {
		accumulated += required
		level++
		required = BaseXPForLevel2 * math.Pow(XPMultiplierPerLevel, float64(level-1))
	}
	return level
}

// XPForNextLevel returns the experience cost of advancing past level.
func XPForNextLevel(level int) float64 {
	if level < 1 {
		return BaseXPForLevel2
	}
	return BaseXPForLevel2 * math.Pow(XPMultiplierPerLevel, float64(level))
}

// AddXP adds amount experience to kind and recalculates its level.
// Non-positive amounts and untracked kinds are ignored.
//
// Postcondition: Level(kind) == LevelForXP(XP(kind)).
func (s *Skills) AddXP(kind modifier.SkillKind, amount float64) {
	sk, ok := s.skills[kind]
	if !ok || amount <= 0 {
		return
	}
	sk.xp += amount
	sk.level = LevelForXP(sk.xp)
}

// XP returns the accumulated experience for kind.
func (s *Skills) XP(kind modifier.SkillKind) float64 {
	if sk, ok := s.skills[kind]; ok {
		return sk.xp
	}
	return 0
}

// Level returns the current level for kind. Untracked kinds report 1.
func (s *Skills) Level(kind modifier.SkillKind) int {
	if sk, ok := s.skills[kind]; ok {
		return sk.level
	}
	return 1
}

// EffectiveValue returns level plus equipment bonus. Untracked kinds report 1.
func (s *Skills) EffectiveValue(kind modifier.SkillKind) float64 {
	if sk, ok := s.skills[kind]; ok {
		return float64(sk.level) + sk.bonus
	}
	return 1
}

// SetEquipmentBonus replaces the equipment bonus for kind.
func (s *Skills) SetEquipmentBonus(kind modifier.SkillKind, value float64) {
	if sk, ok := s.skills[kind]; ok {
		sk.bonus = value
	}
}

// ClearEquipmentBonus resets the equipment bonus for kind to zero.
func (s *Skills) ClearEquipmentBonus(kind modifier.SkillKind) {
	if sk, ok := s.skills[kind]; ok {
		sk.bonus = 0
	}
}

// EquipmentBonus returns the equipment bonus last pushed for kind.
func (s *Skills) EquipmentBonus(kind modifier.SkillKind) float64 {
	if sk, ok := s.skills[kind]; ok {
		return sk.bonus
	}
	return 0
}
