// Package equipment holds the set of items a character is wearing, one per body
// slot, and keeps the modifier aggregator in step with it.
package equipment

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/gearcore/internal/game/item"
	"github.com/cory-johannsen/gearcore/internal/game/modifier"
)

var (
	// ErrNilItem is returned when Equip or CanEquip is given a nil item.
	ErrNilItem = errors.New("equipment: item must not be nil")
	// ErrNotEquippable is returned for an item that declares no valid slot.
	ErrNotEquippable = errors.New("equipment: item is not equippable")
	// ErrInvalidSlot is returned when a slot kind outside the closed set is used.
	ErrInvalidSlot = errors.New("equipment: invalid slot")
	// ErrSlotEmpty is returned when unequipping a slot that holds nothing.
	ErrSlotEmpty = errors.New("equipment: slot is empty")
)

// ChangeFunc is notified after a slot changes. it is nil when the slot was cleared.
type ChangeFunc func(slot item.SlotKind, it *item.Item)

// Option configures a Set.
type Option func(*Set)

// WithGate appends g to the gates consulted by CanEquip.
func WithGate(g Gate) Option {
	return func(s *Set) {
		if g != nil {
			s.gates = append(s.gates, g)
		}
	}
}

// Set maps each slot kind to at most one equipped item.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	slots     map[item.SlotKind]*item.Item
	mods      *modifier.Aggregator
	gates     []Gate
	listeners []ChangeFunc
}

// New creates an empty Set that registers contributions with mods.
//
// Precondition: mods must not be nil.
// Postcondition: every slot is empty.
func New(mods *modifier.Aggregator, opts ...Option) *Set {
	s := &Set{
		slots: make(map[item.SlotKind]*item.Item),
		mods:  mods,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn for slot change notifications, delivered synchronously in
// registration order.
func (s *Set) OnChange(fn ChangeFunc) {
	s.listeners = append(s.listeners, fn)
}

func (s *Set) notify(slot item.SlotKind, it *item.Item) {
	for _, fn := range s.listeners {
		fn(slot, it)
	}
}

// CanEquip reports why it cannot be equipped, or nil when it can.
func (s *Set) CanEquip(it *item.Item) error {
	if it == nil {
		return ErrNilItem
	}
	if !it.Slot.Valid() {
		return fmt.Errorf("%q (slot %q): %w", it.Name, it.Slot, ErrNotEquippable)
	}
	for _, g := range s.gates {
		if err := g.Allow(it); err != nil {
			return err
		}
	}
	return nil
}

// Equip places it in its declared slot and returns the item it displaced, if any.
// The previous occupant's contribution is retracted and the new one registered with
// a single recompute.
//
// Precondition: it must be non-nil.
// Postcondition: on success Equipped(it.Slot) == it and exactly one notification is sent.
func (s *Set) Equip(it *item.Item) (*item.Item, error) {
	if err := s.CanEquip(it); err != nil {
		return nil, err
	}
	prev := s.slots[it.Slot]
	oldID := ""
	if prev != nil {
		oldID = prev.ContributionID()
	}
	if err := s.mods.Replace(oldID, it.Contribution()); err != nil {
		return nil, fmt.Errorf("equipping %q: %w", it.Name, err)
	}
	s.slots[it.Slot] = it
	s.notify(it.Slot, it)
	return prev, nil
}

// Unequip clears slot and returns the item that was there.
//
// Postcondition: on success IsSlotOccupied(slot) is false and its contribution is retracted.
func (s *Set) Unequip(slot item.SlotKind) (*item.Item, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%q: %w", slot, ErrInvalidSlot)
	}
	it, ok := s.slots[slot]
	if !ok {
		return nil, fmt.Errorf("%s: %w", slot.DisplayName(), ErrSlotEmpty)
	}
	delete(s.slots, slot)
	s.mods.Remove(it.ContributionID())
	s.notify(slot, nil)
	return it, nil
}

// UnequipAll clears every occupied slot in canonical slot order and returns the
// removed items in that order. Contributions are retracted with one recompute before
// any notification is sent.
func (s *Set) UnequipAll() []*item.Item {
	var (
		removed []*item.Item
		cleared []item.SlotKind
		ids     []string
	)
	for _, slot := range item.SlotKinds() {
		it, ok := s.slots[slot]
		if !ok {
			continue
		}
		delete(s.slots, slot)
		removed = append(removed, it)
		cleared = append(cleared, slot)
		ids = append(ids, it.ContributionID())
	}
	s.mods.RemoveMany(ids...)
	for _, slot := range cleared {
		s.notify(slot, nil)
	}
	return removed
}

// Equipped returns the item in slot, or nil.
func (s *Set) Equipped(slot item.SlotKind) *item.Item {
	return s.slots[slot]
}

// IsSlotOccupied reports whether slot holds an item.
func (s *Set) IsSlotOccupied(slot item.SlotKind) bool {
	_, ok := s.slots[slot]
	return ok
}

// All returns a copy of the occupied slots.
func (s *Set) All() map[item.SlotKind]*item.Item {
	out := make(map[item.SlotKind]*item.Item, len(s.slots))
	for k, v := range s.slots {
		out[k] = v
	}
	return out
}

// Len returns the number of occupied slots.
func (s *Set) Len() int { return len(s.slots) }
