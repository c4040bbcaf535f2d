// Package attributes tracks a character's resource pools (HP, mana, stamina),
// experience and credits. Maximums are a fixed base plus the equipment bonus
// pushed by the modifier aggregator.
package attributes

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/gearcore/internal/game/modifier"
)

// DefaultBaseMax is the base maximum of every pool before equipment.
const DefaultBaseMax = 100.0

// ErrInsufficientCredits is returned when spending more credits than held.
var ErrInsufficientCredits = errors.New("attributes: insufficient credits")

type pool struct {
	base    float64
	bonus   float64
	current float64
}

func (p pool) max() float64 { return p.base + p.bonus }

// Attributes satisfies modifier.AttributeSink.
// It is not safe for concurrent use.
type Attributes struct {
	pools   map[modifier.AttributeKind]*pool
	xp      float64
	credits int
}

// New returns Attributes with every pool at DefaultBaseMax and full.
func New() *Attributes {
	return NewWithBase(nil)
}

// NewWithBase returns Attributes whose base maximums come from base. Kinds missing
// from base use DefaultBaseMax. Each pool starts full.
func NewWithBase(base map[modifier.AttributeKind]float64) *Attributes {
	a := &Attributes{pools: make(map[modifier.AttributeKind]*pool)}
	for _, k := range modifier.AttributeKinds() {
		b, ok := base[k]
		if !ok {
			b = DefaultBaseMax
		}
		a.pools[k] = &pool{base: b, current: b}
	}
	return a
}

// SetMaxBonus replaces the equipment bonus for kind and clamps the current value
// down to the new maximum. Untracked kinds are ignored.
//
// Postcondition: Max(kind) == base + value; Current(kind) <= Max(kind).
func (a *Attributes) SetMaxBonus(kind modifier.AttributeKind, value float64) {
	p, ok := a.pools[kind]
	if !ok {
		return
	}
	p.bonus = value
	p.current = min(p.current, p.max())
}

// Max returns the current maximum for kind.
func (a *Attributes) Max(kind modifier.AttributeKind) float64 {
	if p, ok := a.pools[kind]; ok {
		return p.max()
	}
	return 0
}

// Base returns the base maximum for kind.
func (a *Attributes) Base(kind modifier.AttributeKind) float64 {
	if p, ok := a.pools[kind]; ok {
		return p.base
	}
	return 0
}

// Bonus returns the equipment bonus last pushed for kind.
func (a *Attributes) Bonus(kind modifier.AttributeKind) float64 {
	if p, ok := a.pools[kind]; ok {
		return p.bonus
	}
	return 0
}

// Current returns the current pool value for kind.
func (a *Attributes) Current(kind modifier.AttributeKind) float64 {
	if p, ok := a.pools[kind]; ok {
		return p.current
	}
	return 0
}

// Modify adds delta to the current value of kind, clamped to [0, Max(kind)].
func (a *Attributes) Modify(kind modifier.AttributeKind, delta float64) {
	p, ok := a.pools[kind]
	if !ok {
		return
	}
	p.current = max(0, min(p.current+delta, p.max()))
}

// Restore refills every pool to its maximum.
func (a *Attributes) Restore() {
	for _, p := range a.pools {
		p.current = max(0, p.max())
	}
}

// XP returns accumulated experience.
func (a *Attributes) XP() float64 { return a.xp }

// AddXP adds amount to experience. Non-positive amounts are ignored.
func (a *Attributes) AddXP(amount float64) {
	if amount > 0 {
		a.xp += amount
	}
}

// Credits returns the credit balance.
func (a *Attributes) Credits() int { return a.credits }

// AddCredits adds amount to the balance. Non-positive amounts are ignored.
func (a *Attributes) AddCredits(amount int) {
	if amount > 0 {
		a.credits += amount
	}
}

// SpendCredits deducts amount from the balance.
//
// Precondition: amount > 0.
// Postcondition: on error the balance is unchanged.
func (a *Attributes) SpendCredits(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("spending %d credits: amount must be > 0", amount)
	}
	if a.credits < amount {
		return fmt.Errorf("spending %d credits, have %d: %w", amount, a.credits, ErrInsufficientCredits)
	}
	a.credits -= amount
	return nil
}
