// Package character coordinates a character's inventory, equipment, modifier
// aggregator and stat sinks. It is the only layer that logs.
package character

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gearcore/internal/game/attributes"
	"github.com/cory-johannsen/gearcore/internal/game/equipment"
	"github.com/cory-johannsen/gearcore/internal/game/inventory"
	"github.com/cory-johannsen/gearcore/internal/game/item"
	"github.com/cory-johannsen/gearcore/internal/game/modifier"
	"github.com/cory-johannsen/gearcore/internal/game/skills"
)

var (
	// ErrNotInInventory is returned when equipping an item the character is not carrying.
	ErrNotInInventory = errors.New("character: item not in inventory")
	// ErrNoRoomForPrevious is returned when a swap would leave the displaced item nowhere to go.
	ErrNoRoomForPrevious = errors.New("character: no room in inventory for the item being replaced")
)

// buffPrefix tags contributions added through ApplyBuff.
const buffPrefix = "buff"

// Character owns one set of gear and the derived stats it produces.
// It is not safe for concurrent use; callers serialise access per character.
type Character struct {
	Name string

	level      int
	attributes *attributes.Attributes
	skills     *skills.Skills
	modifiers  *modifier.Aggregator
	equipment  *equipment.Set
	inventory  *inventory.Inventory
	logger     *zap.Logger
}

// Level returns the character level used by level-gated equipment.
func (c *Character) Level() int { return c.level }

// SetLevel changes the character level.
//
// Precondition: level >= 1.
func (c *Character) SetLevel(level int) {
	c.level = level
	c.logger.Info("level changed", zap.Int("level", level))
}

// Attributes returns the attribute sink.
func (c *Character) Attributes() *attributes.Attributes { return c.attributes }

// Skills returns the skill sink.
func (c *Character) Skills() *skills.Skills { return c.skills }

// Modifiers returns the modifier aggregator.
func (c *Character) Modifiers() *modifier.Aggregator { return c.modifiers }

// Equipment returns the equipment set.
func (c *Character) Equipment() *equipment.Set { return c.equipment }

// Inventory returns the carried inventory.
func (c *Character) Inventory() *inventory.Inventory { return c.inventory }

// PickupItem adds quantity of it to the inventory.
//
// Postcondition: on error the inventory is unchanged.
func (c *Character) PickupItem(it *item.Item, quantity int) error {
	if err := c.inventory.AddItem(it, quantity); err != nil {
		c.logger.Warn("pickup rejected", itemFields(it, zap.Int("quantity", quantity), zap.Error(err))...)
		return err
	}
	c.logger.Info("picked up item", itemFields(it, zap.Int("quantity", quantity))...)
	return nil
}

// DropItem removes quantity of it from the inventory.
//
// Postcondition: on error the inventory is unchanged.
func (c *Character) DropItem(it *item.Item, quantity int) error {
	if err := c.inventory.RemoveItem(it, quantity); err != nil {
		c.logger.Warn("drop rejected", itemFields(it, zap.Int("quantity", quantity), zap.Error(err))...)
		return err
	}
	c.logger.Info("dropped item", itemFields(it, zap.Int("quantity", quantity))...)
	return nil
}

// EquipFromInventory moves one it from the inventory into its equipment slot. An
// item already in that slot goes back into the inventory; if it cannot fit there,
// the swap is undone and ErrNoRoomForPrevious is returned.
//
// Precondition: it must be non-nil.
// Postcondition: on success Equipment().Equipped(it.Slot) == it; returns the displaced item or nil.
func (c *Character) EquipFromInventory(it *item.Item) (*item.Item, error) {
	if it == nil {
		return nil, inventory.ErrNilItem
	}
	idx, ok := c.inventory.FindItem(it)
	if !ok {
		err := fmt.Errorf("%q: %w", it.Name, ErrNotInInventory)
		c.logger.Warn("equip rejected", itemFields(it, zap.Error(err))...)
		return nil, err
	}
	if err := c.equipment.CanEquip(it); err != nil {
		c.logger.Warn("equip rejected", itemFields(it, zap.Error(err))...)
		return nil, err
	}

	if err := c.inventory.RemoveItemFromSlot(idx, 1); err != nil {
		return nil, err
	}
	prev := c.equipment.Equipped(it.Slot)
	if prev != nil && !c.inventory.CanAdd(prev, 1) {
		c.restore(it)
		err := fmt.Errorf("swapping %q for %q: %w", prev.Name, it.Name, ErrNoRoomForPrevious)
		c.logger.Warn("equip rejected", itemFields(it, zap.Error(err))...)
		return nil, err
	}

	if _, err := c.equipment.Equip(it); err != nil {
		c.restore(it)
		c.logger.Warn("equip rejected", itemFields(it, zap.Error(err))...)
		return nil, err
	}
	if prev != nil {
		if err := c.inventory.AddItem(prev, 1); err != nil {
			c.logger.Error("displaced item lost", itemFields(prev, zap.Error(err))...)
			return prev, err
		}
	}

	fields := itemFields(it, zap.String("slot", string(it.Slot)), zap.Stringer("totals", c.modifiers.Totals()))
	if prev != nil {
		fields = append(fields, zap.String("replaced", prev.Name))
	}
	c.logger.Info("equipped item", fields...)
	return prev, nil
}

// restore puts back an item taken out of the inventory for a swap that failed.
func (c *Character) restore(it *item.Item) {
	if err := c.inventory.AddItem(it, 1); err != nil {
		c.logger.Error("failed to restore item to inventory", itemFields(it, zap.Error(err))...)
	}
}

// UnequipToInventory moves the item in slot into the inventory. When the inventory
// cannot take it, the item stays equipped.
//
// Postcondition: on success the slot is empty and the item is carried.
func (c *Character) UnequipToInventory(slot item.SlotKind) (*item.Item, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%q: %w", slot, equipment.ErrInvalidSlot)
	}
	it := c.equipment.Equipped(slot)
	if it == nil {
		err := fmt.Errorf("%s: %w", slot.DisplayName(), equipment.ErrSlotEmpty)
		c.logger.Warn("unequip rejected", zap.String("slot", string(slot)), zap.Error(err))
		return nil, err
	}
	if err := c.inventory.AddItem(it, 1); err != nil {
		c.logger.Warn("unequip rejected", itemFields(it, zap.String("slot", string(slot)), zap.Error(err))...)
		return nil, err
	}
	if _, err := c.equipment.Unequip(slot); err != nil {
		return nil, err
	}
	c.logger.Info("unequipped item",
		itemFields(it, zap.String("slot", string(slot)), zap.Stringer("totals", c.modifiers.Totals()))...)
	return it, nil
}

// UnequipAll clears every slot at once. Removed items are placed in the inventory
// in canonical slot order; those that do not fit are returned as dropped.
func (c *Character) UnequipAll() (stowed, dropped []*item.Item) {
	for _, it := range c.equipment.UnequipAll() {
		if err := c.inventory.AddItem(it, 1); err != nil {
			c.logger.Warn("no room for unequipped item; dropped", itemFields(it, zap.Error(err))...)
			dropped = append(dropped, it)
			continue
		}
		stowed = append(stowed, it)
	}
	c.logger.Info("unequipped all",
		zap.Int("stowed", len(stowed)),
		zap.Int("dropped", len(dropped)),
		zap.Stringer("totals", c.modifiers.Totals()),
	)
	return stowed, dropped
}

// ApplyBuff registers a non-item contribution and returns its ID for later removal.
func (c *Character) ApplyBuff(attrs map[modifier.AttributeKind]float64, skls map[modifier.SkillKind]float64) (string, error) {
	id := modifier.NewSourceID(buffPrefix)
	if err := c.modifiers.Apply(modifier.Contribution{ID: id, Attributes: attrs, Skills: skls}); err != nil {
		return "", err
	}
	c.logger.Info("buff applied", zap.String("buff", id), zap.Stringer("totals", c.modifiers.Totals()))
	return id, nil
}

// RemoveBuff retracts the buff with the given ID. It reports false when absent.
func (c *Character) RemoveBuff(id string) bool {
	if !c.modifiers.Remove(id) {
		c.logger.Warn("buff not active", zap.String("buff", id))
		return false
	}
	c.logger.Info("buff removed", zap.String("buff", id))
	return true
}

// ClearBuffs retracts every buff and returns how many were active.
func (c *Character) ClearBuffs() int {
	n := c.modifiers.RemoveWithPrefix(buffPrefix + ":")
	if n > 0 {
		c.logger.Info("buffs cleared", zap.Int("count", n))
	}
	return n
}

// RestoreLoadout replaces the character's level and gear with a persisted loadout.
// Every equipped item is checked against its slot and the equip gates at the restored
// level before anything changes; then the inventory dump is applied and each slot is
// equipped in canonical order.
//
// Precondition: lookup must resolve every referenced item ID.
// Postcondition: on error the level, inventory and equipment are unchanged.
func (c *Character) RestoreLoadout(level int, dump string, equipped map[item.SlotKind]int, lookup inventory.Lookup) error {
	if level < 1 {
		return fmt.Errorf("restoring level: must be >= 1, got %d", level)
	}

	prevLevel := c.level
	c.level = level
	wear, err := c.checkLoadout(equipped, lookup)
	if err == nil {
		err = c.inventory.Deserialize(dump, lookup)
		if err != nil {
			err = fmt.Errorf("restoring inventory: %w", err)
		}
	}
	if err != nil {
		c.level = prevLevel
		c.logger.Warn("loadout rejected", zap.Int("level", level), zap.Error(err))
		return err
	}

	c.equipment.UnequipAll()
	for _, it := range wear {
		if _, err := c.equipment.Equip(it); err != nil {
			return fmt.Errorf("restoring %s: %w", it.Slot.DisplayName(), err)
		}
	}
	c.logger.Info("loadout restored",
		zap.Int("level", level),
		zap.Int("equipped", len(wear)),
		zap.Stringer("totals", c.modifiers.Totals()),
	)
	return nil
}

// checkLoadout resolves equipped in canonical slot order and runs each item through
// CanEquip at the current level.
func (c *Character) checkLoadout(equipped map[item.SlotKind]int, lookup inventory.Lookup) ([]*item.Item, error) {
	var wear []*item.Item
	for _, slot := range item.SlotKinds() {
		id, ok := equipped[slot]
		if !ok {
			continue
		}
		it, found := lookup.Item(id)
		if !found {
			return nil, fmt.Errorf("restoring %s: unknown item %d", slot.DisplayName(), id)
		}
		if it.Slot != slot {
			return nil, fmt.Errorf("restoring %s: %q belongs in %s", slot.DisplayName(), it.Name, it.Slot.DisplayName())
		}
		if err := c.equipment.CanEquip(it); err != nil {
			return nil, fmt.Errorf("restoring %s: %w", slot.DisplayName(), err)
		}
		wear = append(wear, it)
	}
	return wear, nil
}

func itemFields(it *item.Item, extra ...zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, len(extra)+2)
	if it != nil {
		fields = append(fields, zap.Int("item_id", it.ID), zap.String("item", it.Name))
	}
	return append(fields, extra...)
}
