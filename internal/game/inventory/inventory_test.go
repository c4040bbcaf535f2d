package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gearcore/internal/game/inventory"
	"github.com/cory-johannsen/gearcore/internal/game/item"
)

func stackItem(id int, name string, weight float64, maxStack int) *item.Item {
	return &item.Item{ID: id, Name: name, Weight: weight, Stackable: true, MaxStack: maxStack}
}

func singleItem(id int, name string, weight float64) *item.Item {
	return &item.Item{ID: id, Name: name, Weight: weight}
}

func TestNew_Empty(t *testing.T) {
	inv := inventory.New(4, 20)
	assert.Equal(t, 4, inv.Capacity())
	assert.Equal(t, 4, inv.EmptySlotCount())
	assert.Equal(t, 20.0, inv.MaxWeight())
	assert.Equal(t, 0.0, inv.CurrentWeight())
	assert.False(t, inv.IsFull())
}

func TestAddItem_OreScenario(t *testing.T) {
	ore := stackItem(1, "Ore", 3, 5)
	inv := inventory.New(2, 10)

	err := inv.AddItem(ore, 4)
	require.ErrorIs(t, err, inventory.ErrOverweight)
	assert.Equal(t, 0.0, inv.CurrentWeight())
	assert.Equal(t, 2, inv.EmptySlotCount())

	require.NoError(t, inv.AddItem(ore, 3))
	assert.Equal(t, 9.0, inv.CurrentWeight())
	assert.Equal(t, 3, inv.ItemQuantity(ore))
}

func TestAddItem_TopsUpBeforeNewSlot(t *testing.T) {
	ore := stackItem(1, "Ore", 1, 5)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(ore, 3))
	require.NoError(t, inv.AddItem(ore, 4))

	s0, err := inv.ItemAt(0)
	require.NoError(t, err)
	s1, err := inv.ItemAt(1)
	require.NoError(t, err)
	assert.Equal(t, 5, s0.Quantity)
	assert.Equal(t, 2, s1.Quantity)
	assert.Equal(t, 1, inv.EmptySlotCount())
}

func TestAddItem_SplitsAcrossEmptySlots(t *testing.T) {
	arrow := stackItem(2, "Arrow", 0.1, 20)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(arrow, 45))
	slots := inv.Slots()
	assert.Equal(t, 20, slots[0].Quantity)
	assert.Equal(t, 20, slots[1].Quantity)
	assert.Equal(t, 5, slots[2].Quantity)
	assert.True(t, inv.IsFull())
}

func TestAddItem_NonStackableOnePerSlot(t *testing.T) {
	sword := singleItem(3, "Sword", 2)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(sword, 2))
	slots := inv.Slots()
	assert.Equal(t, 1, slots[0].Quantity)
	assert.Equal(t, 1, slots[1].Quantity)
	assert.True(t, slots[2].Empty())
}

func TestAddItem_NoSpaceIsAtomic(t *testing.T) {
	ore := stackItem(1, "Ore", 1, 5)
	inv := inventory.New(2, 100)
	require.NoError(t, inv.AddItem(ore, 3))

	notified := 0
	inv.OnChange(func(*inventory.Inventory) { notified++ })

	err := inv.AddItem(ore, 8)
	require.ErrorIs(t, err, inventory.ErrNoSpace)
	assert.Equal(t, 3, inv.ItemQuantity(ore))
	assert.Equal(t, 3.0, inv.CurrentWeight())
	assert.Equal(t, 1, inv.EmptySlotCount())
	assert.Equal(t, 0, notified)
}

func TestAddItem_RejectsBadInput(t *testing.T) {
	inv := inventory.New(2, 10)
	assert.ErrorIs(t, inv.AddItem(nil, 1), inventory.ErrNilItem)
	assert.ErrorIs(t, inv.AddItem(singleItem(1, "Rock", 1), 0), inventory.ErrInvalidQuantity)
	assert.ErrorIs(t, inv.AddItem(singleItem(1, "Rock", 1), -2), inventory.ErrInvalidQuantity)
}

func TestAddItem_ExactCeilingAllowed(t *testing.T) {
	inv := inventory.New(2, 4)
	require.NoError(t, inv.AddItem(singleItem(1, "Anvil", 4), 1))
	assert.Equal(t, 4.0, inv.CurrentWeight())
}

func TestAddItem_FractionalWeightsFillCeiling(t *testing.T) {
	gem := stackItem(1, "Gem", 0.1, 10)

	inv := inventory.New(2, 0.3)
	for i := 0; i < 3; i++ {
		require.NoError(t, inv.AddItem(gem, 1), "add %d", i+1)
	}
	assert.ErrorIs(t, inv.AddItem(gem, 1), inventory.ErrOverweight)
	assert.Equal(t, 3, inv.ItemQuantity(gem))

	bulk := inventory.New(2, 0.3)
	assert.True(t, bulk.CanAdd(gem, 3))
	require.NoError(t, bulk.AddItem(gem, 3))
	assert.False(t, bulk.CanAdd(gem, 1))
}

func TestCanAdd(t *testing.T) {
	ore := stackItem(1, "Ore", 3, 5)
	inv := inventory.New(1, 10)
	assert.True(t, inv.CanAdd(ore, 3))
	assert.False(t, inv.CanAdd(ore, 4))
	assert.False(t, inv.CanAdd(nil, 1))
	require.NoError(t, inv.AddItem(ore, 3))
	assert.False(t, inv.CanAdd(singleItem(2, "Pebble", 0), 1), "no free slot")
}

func TestRemoveItem_WalksSlotsInOrder(t *testing.T) {
	ore := stackItem(1, "Ore", 1, 5)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(ore, 12))

	require.NoError(t, inv.RemoveItem(ore, 7))
	slots := inv.Slots()
	assert.True(t, slots[0].Empty())
	assert.Equal(t, 3, slots[1].Quantity)
	assert.Equal(t, 2, slots[2].Quantity)
	assert.Equal(t, 5.0, inv.CurrentWeight())
}

func TestRemoveItem_Insufficient(t *testing.T) {
	ore := stackItem(1, "Ore", 1, 5)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(ore, 2))

	err := inv.RemoveItem(ore, 3)
	require.ErrorIs(t, err, inventory.ErrInsufficientQuantity)
	assert.Equal(t, 2, inv.ItemQuantity(ore))

	assert.ErrorIs(t, inv.RemoveItem(nil, 1), inventory.ErrNilItem)
	assert.ErrorIs(t, inv.RemoveItem(ore, 0), inventory.ErrInvalidQuantity)
}

func TestRemoveItemFromSlot(t *testing.T) {
	ore := stackItem(1, "Ore", 2, 5)
	inv := inventory.New(2, 100)
	require.NoError(t, inv.AddItem(ore, 4))

	assert.ErrorIs(t, inv.RemoveItemFromSlot(5, 1), inventory.ErrSlotOutOfRange)
	assert.ErrorIs(t, inv.RemoveItemFromSlot(-1, 1), inventory.ErrSlotOutOfRange)
	assert.ErrorIs(t, inv.RemoveItemFromSlot(1, 1), inventory.ErrEmptySlot)
	assert.ErrorIs(t, inv.RemoveItemFromSlot(0, 5), inventory.ErrInsufficientQuantity)
	assert.ErrorIs(t, inv.RemoveItemFromSlot(0, 0), inventory.ErrInvalidQuantity)

	require.NoError(t, inv.RemoveItemFromSlot(0, 3))
	assert.Equal(t, 1, inv.ItemQuantity(ore))
	assert.Equal(t, 2.0, inv.CurrentWeight())

	require.NoError(t, inv.RemoveItemFromSlot(0, 1))
	s, err := inv.ItemAt(0)
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Quantity)
}

func TestItemAt_OutOfRange(t *testing.T) {
	inv := inventory.New(1, 10)
	_, err := inv.ItemAt(1)
	assert.ErrorIs(t, err, inventory.ErrSlotOutOfRange)
}

func TestFindAndHasItem(t *testing.T) {
	rock := singleItem(1, "Rock", 1)
	gem := singleItem(2, "Gem", 0.5)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(rock, 1))
	require.NoError(t, inv.AddItem(gem, 1))

	idx, ok := inv.FindItem(gem)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = inv.FindItem(singleItem(9, "Ghost", 0))
	assert.False(t, ok)
	_, ok = inv.FindItem(nil)
	assert.False(t, ok)

	assert.True(t, inv.HasItem(rock, 1))
	assert.False(t, inv.HasItem(rock, 2))
}

func TestSort_Scenario(t *testing.T) {
	a := stackItem(1, "A", 1, 10)
	b := stackItem(2, "B", 1, 10)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(b, 1))
	require.NoError(t, inv.AddItem(singleItem(9, "Filler", 0), 1))
	require.NoError(t, inv.AddItem(a, 3))
	require.NoError(t, inv.RemoveItemFromSlot(1, 1))

	inv.Sort()

	slots := inv.Slots()
	require.False(t, slots[0].Empty())
	assert.Equal(t, 1, slots[0].Item.ID)
	assert.Equal(t, 3, slots[0].Quantity)
	require.False(t, slots[1].Empty())
	assert.Equal(t, 2, slots[1].Item.ID)
	assert.Equal(t, 1, slots[1].Quantity)
	assert.True(t, slots[2].Empty())
}

func TestSort_SameItemDescendingQuantity(t *testing.T) {
	ore := stackItem(1, "Ore", 1, 5)
	inv := inventory.New(3, 100)
	require.NoError(t, inv.AddItem(ore, 12))
	require.NoError(t, inv.RemoveItemFromSlot(0, 4))

	inv.Sort()
	slots := inv.Slots()
	assert.Equal(t, 5, slots[0].Quantity)
	assert.Equal(t, 2, slots[1].Quantity)
	assert.Equal(t, 1, slots[2].Quantity)
}

func TestClear(t *testing.T) {
	inv := inventory.New(2, 100)
	require.NoError(t, inv.AddItem(stackItem(1, "Ore", 2, 5), 6))
	inv.Clear()
	assert.Equal(t, 2, inv.EmptySlotCount())
	assert.Equal(t, 0.0, inv.CurrentWeight())
}

func TestOnChange_OncePerSuccessfulCall(t *testing.T) {
	ore := stackItem(1, "Ore", 1, 5)
	inv := inventory.New(3, 100)

	var order []string
	inv.OnChange(func(*inventory.Inventory) { order = append(order, "first") })
	inv.OnChange(func(got *inventory.Inventory) {
		assert.Same(t, inv, got)
		order = append(order, "second")
	})

	require.NoError(t, inv.AddItem(ore, 12), "spans three slots")
	assert.Equal(t, []string{"first", "second"}, order)

	order = nil
	require.NoError(t, inv.RemoveItem(ore, 7))
	assert.Len(t, order, 2)

	order = nil
	_ = inv.RemoveItem(ore, 100)
	_ = inv.AddItem(nil, 1)
	_ = inv.RemoveItemFromSlot(10, 1)
	assert.Empty(t, order, "failures do not notify")

	inv.Sort()
	inv.Clear()
	assert.Len(t, order, 4)
}

func TestOnChange_SeesUpdatedWeight(t *testing.T) {
	inv := inventory.New(2, 100)
	var seen float64
	inv.OnChange(func(i *inventory.Inventory) { seen = i.CurrentWeight() })
	require.NoError(t, inv.AddItem(stackItem(1, "Ore", 2.5, 5), 2))
	assert.Equal(t, 5.0, seen)
}

func TestSlots_IsCopy(t *testing.T) {
	inv := inventory.New(1, 10)
	require.NoError(t, inv.AddItem(singleItem(1, "Rock", 1), 1))
	slots := inv.Slots()
	slots[0] = inventory.Slot{}
	assert.Equal(t, 0, inv.EmptySlotCount())
}

// weightOf re-sums the slots independently of the inventory's own bookkeeping.
func weightOf(inv *inventory.Inventory) float64 {
	var total float64
	for _, s := range inv.Slots() {
		if !s.Empty() {
			total += s.Item.Weight * float64(s.Quantity)
		}
	}
	return total
}

func TestPropertyInventory_Invariants(t *testing.T) {
	catalog := []*item.Item{
		stackItem(1, "Ore", 3, 5),
		stackItem(2, "Arrow", 0.25, 20),
		singleItem(3, "Sword", 4),
		singleItem(4, "Feather", 0),
	}
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(0, 6).Draw(rt, "capacity")
		maxWeight := float64(rapid.IntRange(0, 40).Draw(rt, "maxWeight"))
		inv := inventory.New(capacity, maxWeight)

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			it := rapid.SampledFrom(catalog).Draw(rt, "item")
			qty := rapid.IntRange(1, 25).Draw(rt, "qty")
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				before := inv.Slots()
				if err := inv.AddItem(it, qty); err != nil {
					assert.Equal(rt, before, inv.Slots(), "failed add must not mutate")
				}
			case 1:
				held := inv.ItemQuantity(it)
				err := inv.RemoveItem(it, qty)
				if (err != nil) != (held < qty) {
					rt.Fatalf("RemoveItem(%d) with %d held: err=%v", qty, held, err)
				}
			case 2:
				inv.Sort()
			case 3:
				if capacity > 0 {
					idx := rapid.IntRange(0, capacity-1).Draw(rt, "idx")
					_ = inv.RemoveItemFromSlot(idx, qty)
				}
			}

			if inv.CurrentWeight() > inv.MaxWeight()+1e-9 {
				rt.Fatalf("weight %v exceeds ceiling %v", inv.CurrentWeight(), inv.MaxWeight())
			}
			if math.Abs(inv.CurrentWeight()-weightOf(inv)) > 1e-9 {
				rt.Fatalf("weight %v != slot sum %v", inv.CurrentWeight(), weightOf(inv))
			}
			for idx, s := range inv.Slots() {
				if s.Empty() != (s.Quantity == 0) {
					rt.Fatalf("slot %d: empty=%v quantity=%d", idx, s.Empty(), s.Quantity)
				}
				if !s.Empty() && s.Quantity > s.Item.EffectiveMaxStack() {
					rt.Fatalf("slot %d: quantity %d over max stack", idx, s.Quantity)
				}
			}
		}
	})
}

func TestPropertySort_Permutation(t *testing.T) {
	catalog := []*item.Item{
		stackItem(1, "Ore", 1, 5),
		stackItem(2, "Arrow", 0.5, 20),
		singleItem(3, "Sword", 2),
	}
	rapid.Check(t, func(rt *rapid.T) {
		inv := inventory.New(8, 1000)
		n := rapid.IntRange(0, 10).Draw(rt, "n")
		for i := 0; i < n; i++ {
			it := rapid.SampledFrom(catalog).Draw(rt, "item")
			_ = inv.AddItem(it, rapid.IntRange(1, 10).Draw(rt, "qty"))
			if rapid.Bool().Draw(rt, "punch") {
				_ = inv.RemoveItemFromSlot(rapid.IntRange(0, 7).Draw(rt, "idx"), 1)
			}
		}
		totals := make(map[int]int)
		for _, it := range catalog {
			totals[it.ID] = inv.ItemQuantity(it)
		}
		weight := inv.CurrentWeight()

		inv.Sort()

		for _, it := range catalog {
			if got := inv.ItemQuantity(it); got != totals[it.ID] {
				rt.Fatalf("item %d quantity %d -> %d", it.ID, totals[it.ID], got)
			}
		}
		assert.InDelta(rt, weight, inv.CurrentWeight(), 1e-9)
		seenEmpty := false
		prevID := 0
		for _, s := range inv.Slots() {
			if s.Empty() {
				seenEmpty = true
				continue
			}
			if seenEmpty {
				rt.Fatalf("occupied slot after an empty one")
			}
			if s.Item.ID < prevID {
				rt.Fatalf("ids out of order: %d after %d", s.Item.ID, prevID)
			}
			prevID = s.Item.ID
		}
	})
}
