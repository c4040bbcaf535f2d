package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/gearcore/internal/game/item"
)

// ErrMalformedDump is returned when a textual dump cannot be parsed or applied.
var ErrMalformedDump = errors.New("inventory: malformed dump")

// Lookup resolves item IDs to shared item definitions. *item.Catalog satisfies it.
type Lookup interface {
	Item(id int) (*item.Item, bool)
}

// Serialize returns one line per occupied slot in index order, each of the form
// "<slot> <item id> <quantity>".
//
// Postcondition: Deserialize(Serialize()) on an inventory of equal capacity reproduces the slots.
func (inv *Inventory) Serialize() string {
	var b strings.Builder
	for i, s := range inv.slots {
		if s.Empty() {
			continue
		}
		fmt.Fprintf(&b, "%d %d %d\n", i, s.Item.ID, s.Quantity)
	}
	return b.String()
}

// Deserialize replaces the inventory contents with the slots described by text.
// Every line is parsed and validated against capacity, stack limits and the weight
// ceiling before anything is replaced. Blank lines are ignored.
//
// Precondition: lookup must not be nil.
// Postcondition: on error the inventory is unchanged and no notification is emitted.
func (inv *Inventory) Deserialize(text string, lookup Lookup) error {
	next := make([]Slot, len(inv.slots))
	var weight float64

	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return fmt.Errorf("line %d: expected 3 fields, got %d: %w", n+1, len(fields), ErrMalformedDump)
		}
		var nums [3]int
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return fmt.Errorf("line %d: field %q: %w", n+1, f, ErrMalformedDump)
			}
			nums[i] = v
		}
		idx, id, qty := nums[0], nums[1], nums[2]

		if idx < 0 || idx >= len(next) {
			return fmt.Errorf("line %d: slot %d of %d: %w", n+1, idx, len(next), ErrMalformedDump)
		}
		if !next[idx].Empty() {
			return fmt.Errorf("line %d: slot %d listed twice: %w", n+1, idx, ErrMalformedDump)
		}
		it, ok := lookup.Item(id)
		if !ok {
			return fmt.Errorf("line %d: unknown item %d: %w", n+1, id, ErrMalformedDump)
		}
		if qty <= 0 || qty > it.EffectiveMaxStack() {
			return fmt.Errorf("line %d: quantity %d outside 1..%d for %q: %w",
				n+1, qty, it.EffectiveMaxStack(), it.Name, ErrMalformedDump)
		}
		next[idx] = Slot{Item: it, Quantity: qty}
		weight += it.Weight * float64(qty)
	}

	if inv.exceedsCeiling(weight) {
		return fmt.Errorf("dump weighs %.2f, ceiling %.2f: %w", weight, inv.maxWeight, ErrOverweight)
	}

	inv.slots = next
	inv.changed()
	return nil
}
