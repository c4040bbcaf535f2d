// Package inventory provides the fixed-capacity, weight-limited slotted inventory
// that carries items not currently equipped.
package inventory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/gearcore/internal/game/item"
)

var (
	// ErrNilItem is returned when an operation is given a nil item.
	ErrNilItem = errors.New("inventory: item must not be nil")
	// ErrInvalidQuantity is returned for a quantity <= 0.
	ErrInvalidQuantity = errors.New("inventory: quantity must be > 0")
	// ErrSlotOutOfRange is returned for a slot index outside [0, Capacity()).
	ErrSlotOutOfRange = errors.New("inventory: slot index out of range")
	// ErrOverweight is returned when an add would exceed the weight ceiling.
	ErrOverweight = errors.New("inventory: weight limit exceeded")
	// ErrNoSpace is returned when no slot can take the remaining quantity.
	ErrNoSpace = errors.New("inventory: not enough free slots")
	// ErrInsufficientQuantity is returned when fewer items are held than requested.
	ErrInsufficientQuantity = errors.New("inventory: insufficient quantity")
	// ErrEmptySlot is returned when removing from an empty slot.
	ErrEmptySlot = errors.New("inventory: slot is empty")
)

// Slot is one fixed position in the inventory.
// Invariant: Quantity > 0 iff Item != nil, and Quantity <= Item.EffectiveMaxStack().
type Slot struct {
	Item     *item.Item
	Quantity int
}

// Empty reports whether the slot holds nothing.
func (s Slot) Empty() bool { return s.Item == nil }

func (s Slot) holds(it *item.Item) bool {
	return s.Item != nil && s.Item.ID == it.ID
}

// weightTolerance absorbs float rounding in summed weights, so 3 x 0.1 fits a 0.3 ceiling.
const weightTolerance = 1e-9

// ChangeFunc is notified after every successful mutation of an Inventory.
type ChangeFunc func(inv *Inventory)

// Inventory is an ordered, fixed-length array of slots with a weight ceiling.
// It is not safe for concurrent use; the caller must serialise access.
type Inventory struct {
	maxWeight     float64
	slots         []Slot
	currentWeight float64
	listeners     []ChangeFunc
}

// New creates an Inventory with capacity empty slots.
//
// Precondition: capacity >= 0 and maxWeight >= 0.
// Postcondition: Capacity() == capacity, EmptySlotCount() == capacity, CurrentWeight() == 0.
func New(capacity int, maxWeight float64) *Inventory {
	if capacity < 0 {
		capacity = 0
	}
	return &Inventory{
		maxWeight: maxWeight,
		slots:     make([]Slot, capacity),
	}
}

// OnChange registers fn to be called synchronously, in registration order,
// after each successful mutation.
//
// Precondition: fn must not be nil.
func (inv *Inventory) OnChange(fn ChangeFunc) {
	inv.listeners = append(inv.listeners, fn)
}

func (inv *Inventory) changed() {
	inv.recalculateWeight()
	for _, fn := range inv.listeners {
		fn(inv)
	}
}

// recalculateWeight re-sums the weight of every slot.
func (inv *Inventory) recalculateWeight() {
	var total float64
	for _, s := range inv.slots {
		if s.Item != nil {
			total += s.Item.Weight * float64(s.Quantity)
		}
	}
	inv.currentWeight = total
}

// placement records quantity destined for slot index.
type placement struct {
	index    int
	quantity int
}

// AddItem places quantity units of it into the inventory.
// Existing partial stacks of the same item are topped up first, in slot order,
// then the remainder fills empty slots in slot order, each up to the item's max stack.
// It is atomic: on error, no slot is modified and no notification is emitted.
//
// Precondition: it non-nil; quantity > 0.
// Postcondition: on success, ItemQuantity(it) grows by quantity and CurrentWeight() <= MaxWeight().
func (inv *Inventory) AddItem(it *item.Item, quantity int) error {
	if it == nil {
		return ErrNilItem
	}
	if quantity <= 0 {
		return fmt.Errorf("adding %d of %q: %w", quantity, it.Name, ErrInvalidQuantity)
	}

	added := it.Weight * float64(quantity)
	if inv.exceedsCeiling(inv.currentWeight + added) {
		return fmt.Errorf("adding %d of %q (%.2f + %.2f > %.2f): %w",
			quantity, it.Name, inv.currentWeight, added, inv.maxWeight, ErrOverweight)
	}

	plan, remaining := inv.planAdd(it, quantity)
	if remaining > 0 {
		return fmt.Errorf("adding %d of %q: %d could not be placed: %w",
			quantity, it.Name, remaining, ErrNoSpace)
	}

	for _, p := range plan {
		s := &inv.slots[p.index]
		s.Item = it
		s.Quantity += p.quantity
	}
	inv.changed()
	return nil
}

// planAdd computes where quantity units of it would go without mutating anything.
// It returns the placements and whatever quantity could not be placed.
func (inv *Inventory) planAdd(it *item.Item, quantity int) ([]placement, int) {
	maxStack := it.EffectiveMaxStack()
	remaining := quantity
	var plan []placement

	if it.Stackable {
		for i, s := range inv.slots {
			if remaining == 0 {
				break
			}
			if !s.holds(it) || s.Quantity >= maxStack {
				continue
			}
			take := min(maxStack-s.Quantity, remaining)
			plan = append(plan, placement{index: i, quantity: take})
			remaining -= take
		}
	}

	for i, s := range inv.slots {
		if remaining == 0 {
			break
		}
		if !s.Empty() {
			continue
		}
		take := min(maxStack, remaining)
		plan = append(plan, placement{index: i, quantity: take})
		remaining -= take
	}
	return plan, remaining
}

func (inv *Inventory) exceedsCeiling(weight float64) bool {
	return weight > inv.maxWeight+weightTolerance
}

// CanAdd reports whether AddItem(it, quantity) would succeed, without mutating.
func (inv *Inventory) CanAdd(it *item.Item, quantity int) bool {
	if it == nil || quantity <= 0 {
		return false
	}
	if inv.exceedsCeiling(inv.currentWeight + it.Weight*float64(quantity)) {
		return false
	}
	_, remaining := inv.planAdd(it, quantity)
	return remaining == 0
}

// RemoveItem removes quantity units of it, walking slots in index order and clearing
// any slot that reaches zero.
//
// Precondition: it non-nil; quantity > 0.
// Postcondition: fails without mutation iff ItemQuantity(it) < quantity.
func (inv *Inventory) RemoveItem(it *item.Item, quantity int) error {
	if it == nil {
		return ErrNilItem
	}
	if quantity <= 0 {
		return fmt.Errorf("removing %d of %q: %w", quantity, it.Name, ErrInvalidQuantity)
	}
	if held := inv.ItemQuantity(it); held < quantity {
		return fmt.Errorf("removing %d of %q, holding %d: %w", quantity, it.Name, held, ErrInsufficientQuantity)
	}

	remaining := quantity
	for i := range inv.slots {
		if remaining == 0 {
			break
		}
		s := &inv.slots[i]
		if !s.holds(it) {
			continue
		}
		take := min(s.Quantity, remaining)
		s.Quantity -= take
		remaining -= take
		if s.Quantity == 0 {
			*s = Slot{}
		}
	}
	inv.changed()
	return nil
}

// RemoveItemFromSlot removes quantity units from the slot at index.
//
// Precondition: 0 <= index < Capacity(); quantity > 0.
// Postcondition: on success the slot is decremented, and cleared at zero.
func (inv *Inventory) RemoveItemFromSlot(index, quantity int) error {
	if index < 0 || index >= len(inv.slots) {
		return fmt.Errorf("slot %d of %d: %w", index, len(inv.slots), ErrSlotOutOfRange)
	}
	if quantity <= 0 {
		return fmt.Errorf("removing %d from slot %d: %w", quantity, index, ErrInvalidQuantity)
	}
	s := &inv.slots[index]
	if s.Empty() {
		return fmt.Errorf("slot %d: %w", index, ErrEmptySlot)
	}
	if s.Quantity < quantity {
		return fmt.Errorf("removing %d from slot %d holding %d: %w", quantity, index, s.Quantity, ErrInsufficientQuantity)
	}
	s.Quantity -= quantity
	if s.Quantity == 0 {
		*s = Slot{}
	}
	inv.changed()
	return nil
}

// ItemAt returns a copy of the slot at index.
func (inv *Inventory) ItemAt(index int) (Slot, error) {
	if index < 0 || index >= len(inv.slots) {
		return Slot{}, fmt.Errorf("slot %d of %d: %w", index, len(inv.slots), ErrSlotOutOfRange)
	}
	return inv.slots[index], nil
}

// FindItem returns the index of the first slot holding it.
//
// Postcondition: ok is false when no slot holds it.
func (inv *Inventory) FindItem(it *item.Item) (index int, ok bool) {
	if it == nil {
		return -1, false
	}
	for i, s := range inv.slots {
		if s.holds(it) {
			return i, true
		}
	}
	return -1, false
}

// HasItem reports whether at least quantity units of it are held.
func (inv *Inventory) HasItem(it *item.Item, quantity int) bool {
	return inv.ItemQuantity(it) >= quantity
}

// ItemQuantity returns the total quantity of it across all slots.
func (inv *Inventory) ItemQuantity(it *item.Item) int {
	if it == nil {
		return 0
	}
	total := 0
	for _, s := range inv.slots {
		if s.holds(it) {
			total += s.Quantity
		}
	}
	return total
}

// Sort reorders the slots: occupied before empty, then ascending item ID, then
// descending quantity. Equal slots keep their relative order.
//
// Postcondition: slot contents are a permutation of the previous contents.
func (inv *Inventory) Sort() {
	sort.SliceStable(inv.slots, func(i, j int) bool {
		a, b := inv.slots[i], inv.slots[j]
		if a.Empty() != b.Empty() {
			return !a.Empty()
		}
		if a.Empty() {
			return false
		}
		if a.Item.ID != b.Item.ID {
			return a.Item.ID < b.Item.ID
		}
		return a.Quantity > b.Quantity
	})
	inv.changed()
}

// Clear empties every slot.
//
// Postcondition: EmptySlotCount() == Capacity() and CurrentWeight() == 0.
func (inv *Inventory) Clear() {
	for i := range inv.slots {
		inv.slots[i] = Slot{}
	}
	inv.changed()
}

// EmptySlotCount returns the number of empty slots.
func (inv *Inventory) EmptySlotCount() int {
	n := 0
	for _, s := range inv.slots {
		if s.Empty() {
			n++
		}
	}
	return n
}

// IsFull reports whether no slot is empty.
func (inv *Inventory) IsFull() bool { return inv.EmptySlotCount() == 0 }

// CurrentWeight returns the total weight carried.
func (inv *Inventory) CurrentWeight() float64 { return inv.currentWeight }

// MaxWeight returns the weight ceiling.
func (inv *Inventory) MaxWeight() float64 { return inv.maxWeight }

// Capacity returns the fixed number of slots.
func (inv *Inventory) Capacity() int { return len(inv.slots) }

// Slots returns a snapshot copy of every slot in index order.
//
// Postcondition: returned slice is a copy; mutations do not affect the inventory.
func (inv *Inventory) Slots() []Slot {
	out := make([]Slot, len(inv.slots))
	copy(out, inv.slots)
	return out
}
