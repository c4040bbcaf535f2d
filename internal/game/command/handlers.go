package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/gearcore/internal/game/character"
	"github.com/cory-johannsen/gearcore/internal/game/equipment"
	"github.com/cory-johannsen/gearcore/internal/game/inventory"
	"github.com/cory-johannsen/gearcore/internal/game/item"
	"github.com/cory-johannsen/gearcore/internal/game/modifier"
)

// Store persists a character's level and loadout.
type Store interface {
	Save(ctx context.Context, character string, level int, inv *inventory.Inventory, eq *equipment.Set) error
}

// Session is the state console commands act on.
type Session struct {
	Character *character.Character
	Catalog   *item.Catalog
	Registry  *Registry
	// Store is optional; without it the save command reports that saving is disabled.
	Store Store
}

// categoryOrder is the order categories appear in help output.
var categoryOrder = []string{CategoryInventory, CategoryEquipment, CategoryCharacter, CategorySystem}

// Handle parses line, resolves the command and runs its handler.
//
// Precondition: sess.Character, sess.Catalog and sess.Registry must be non-nil.
// Postcondition: Returns the text to show and whether the session should end.
func Handle(ctx context.Context, sess *Session, line string) (string, bool) {
	p := Parse(line)
	if p.Command == "" {
		return "", false
	}
	cmd, ok := sess.Registry.Resolve(p.Command)
	if !ok {
		return fmt.Sprintf("Unknown command %q. Type 'help' for a list of commands.", p.Command), false
	}

	switch cmd.Handler {
	case HandlerPickup:
		return HandlePickup(sess, p.Args), false
	case HandlerDrop:
		return HandleDrop(sess, p.Args), false
	case HandlerSort:
		return HandleSort(sess), false
	case HandlerInventory:
		return HandleInventory(sess), false
	case HandlerExamine:
		return HandleExamine(sess, p.Args), false
	case HandlerEquip:
		return HandleEquip(sess, p.Args), false
	case HandlerUnequip:
		return HandleUnequip(sess, p.Args), false
	case HandlerUnequipAll:
		return HandleUnequipAll(sess), false
	case HandlerEquipment:
		return HandleEquipment(sess), false
	case HandlerStats:
		return HandleStats(sess), false
	case HandlerBuff:
		return HandleBuff(sess, p.Args), false
	case HandlerLevel:
		return HandleLevel(sess, p.Args), false
	case HandlerSave:
		return HandleSave(ctx, sess), false
	case HandlerHelp:
		return HandleHelp(sess.Registry), false
	case HandlerQuit:
		return "Goodbye.", true
	}
	return fmt.Sprintf("Command %q has no handler.", cmd.Name), false
}

// HandlePickup adds catalog items to the inventory.
//
// Postcondition: the inventory is unchanged when the returned text reports a failure.
func HandlePickup(sess *Session, args []string) string {
	it, qty, msg := itemAndQuantity(sess, "pickup", args)
	if it == nil {
		return msg
	}
	if err := sess.Character.PickupItem(it, qty); err != nil {
		return fmt.Sprintf("You cannot pick up %s: %s.", describe(it, qty), reason(err))
	}
	return fmt.Sprintf("You pick up %s.", describe(it, qty))
}

// HandleDrop removes items from the inventory.
func HandleDrop(sess *Session, args []string) string {
	it, qty, msg := itemAndQuantity(sess, "drop", args)
	if it == nil {
		return msg
	}
	if err := sess.Character.DropItem(it, qty); err != nil {
		return fmt.Sprintf("You cannot drop %s: %s.", describe(it, qty), reason(err))
	}
	return fmt.Sprintf("You drop %s.", describe(it, qty))
}

// HandleSort compacts and orders the inventory.
func HandleSort(sess *Session) string {
	sess.Character.Inventory().Sort()
	return "Inventory sorted."
}

// HandleInventory lists occupied slots with their indices, followed by slot and weight usage.
func HandleInventory(sess *Session) string {
	inv := sess.Character.Inventory()
	var sb strings.Builder
	sb.WriteString("=== Inventory ===\n")

	shown := 0
	for i, s := range inv.Slots() {
		if s.Empty() {
			continue
		}
		sb.WriteString(fmt.Sprintf("  [%2d] %s\n", i, describe(s.Item, s.Quantity)))
		shown++
	}
	if shown == 0 {
		sb.WriteString("  (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("Slots: %d/%d  Weight: %.1f/%.1f",
		inv.Capacity()-inv.EmptySlotCount(), inv.Capacity(), inv.CurrentWeight(), inv.MaxWeight()))
	return sb.String()
}

// HandleExamine describes a catalog item.
func HandleExamine(sess *Session, args []string) string {
	if len(args) == 0 {
		return "Usage: examine <item>"
	}
	ref := strings.Join(args, " ")
	it, ok := lookupItem(sess.Catalog, ref)
	if !ok {
		return fmt.Sprintf("No item called %q.", ref)
	}

	var sb strings.Builder
	sb.WriteString(it.Info())
	if it.Stackable {
		sb.WriteString(fmt.Sprintf("\nStacks to: %d", it.EffectiveMaxStack()))
	}
	if it.Equippable() {
		sb.WriteString("\nSlot: " + it.Slot.DisplayName())
		if it.RequiredLevel > 1 {
			sb.WriteString(fmt.Sprintf("\nRequires level: %d", it.RequiredLevel))
		}
		if it.ArmorRating > 0 {
			sb.WriteString(fmt.Sprintf("\nArmor: %d", it.ArmorRating))
		}
		sb.WriteString("\nBonuses: " + formatBonuses(it.Attributes, it.Skills))
	}
	return sb.String()
}

// HandleEquip equips a carried item, returning any displaced item to the inventory.
func HandleEquip(sess *Session, args []string) string {
	if len(args) == 0 {
		return "Usage: equip <item>"
	}
	ref := strings.Join(args, " ")
	it, ok := lookupItem(sess.Catalog, ref)
	if !ok {
		return fmt.Sprintf("No item called %q.", ref)
	}
	prev, err := sess.Character.EquipFromInventory(it)
	if err != nil {
		return fmt.Sprintf("You cannot equip %s: %s.", it.Name, reason(err))
	}
	if prev != nil {
		return fmt.Sprintf("You equip %s, replacing %s.", it.Name, prev.Name)
	}
	return fmt.Sprintf("You equip %s.", it.Name)
}

// HandleUnequip moves the item in a slot back into the inventory.
func HandleUnequip(sess *Session, args []string) string {
	if len(args) == 0 {
		return "Usage: unequip <slot>"
	}
	slot, ok := parseSlot(args)
	if !ok {
		return fmt.Sprintf("Unknown slot %q. Slots: %s.", strings.Join(args, " "), slotList())
	}
	it, err := sess.Character.UnequipToInventory(slot)
	if err != nil {
		return fmt.Sprintf("You cannot unequip your %s: %s.", strings.ToLower(slot.DisplayName()), reason(err))
	}
	return fmt.Sprintf("You remove %s.", it.Name)
}

// HandleUnequipAll clears every slot. Items that do not fit in the inventory are reported as dropped.
func HandleUnequipAll(sess *Session) string {
	stowed, dropped := sess.Character.UnequipAll()
	if len(stowed) == 0 && len(dropped) == 0 {
		return "You have nothing equipped."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You remove %d item(s).", len(stowed)+len(dropped)))
	for _, it := range dropped {
		sb.WriteString(fmt.Sprintf("\nNo room for %s; it falls to the ground.", it.Name))
	}
	return sb.String()
}

// HandleEquipment shows every slot in canonical order and the combined bonuses.
func HandleEquipment(sess *Session) string {
	eq := sess.Character.Equipment()
	var sb strings.Builder
	sb.WriteString("=== Equipment ===\n")
	for _, slot := range item.SlotKinds() {
		name := "empty"
		if it := eq.Equipped(slot); it != nil {
			name = it.Name
		}
		sb.WriteString(fmt.Sprintf("  %-11s %s\n", slot.DisplayName()+":", name))
	}
	sb.WriteString("Bonuses: " + sess.Character.Modifiers().Totals().String())
	return sb.String()
}

// HandleStats shows level, resource pools and skill values.
func HandleStats(sess *Session) string {
	c := sess.Character
	attrs := c.Attributes()
	skls := c.Skills()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s (level %d) ===\n", c.Name, c.Level()))
	for _, k := range modifier.AttributeKinds() {
		sb.WriteString(fmt.Sprintf("  %-20s %6.1f / %-6.1f (base %g, bonus %+g)\n",
			k, attrs.Current(k), attrs.Max(k), attrs.Base(k), attrs.Bonus(k)))
	}
	sb.WriteString(fmt.Sprintf("  %-20s %d\n", "credits", attrs.Credits()))
	sb.WriteString("Skills:\n")
	for _, k := range modifier.SkillKinds() {
		sb.WriteString(fmt.Sprintf("  %-20s level %-3d bonus %+-6g effective %g\n",
			k, skls.Level(k), skls.EquipmentBonus(k), skls.EffectiveValue(k)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleBuff lists, applies or removes non-item bonuses.
//
//	buff                   list active buffs
//	buff <kind> <amount>   apply a bonus to an attribute or skill
//	buff remove <id>       remove one buff
//	buff clear             remove every buff
func HandleBuff(sess *Session, args []string) string {
	c := sess.Character
	if len(args) == 0 {
		return listBuffs(c)
	}
	switch strings.ToLower(args[0]) {
	case "clear":
		return fmt.Sprintf("Removed %d buff(s).", c.ClearBuffs())
	case "remove":
		if len(args) != 2 {
			return "Usage: buff remove <id>"
		}
		if !c.RemoveBuff(args[1]) {
			return fmt.Sprintf("No active buff %q.", args[1])
		}
		return fmt.Sprintf("Buff %s removed.", args[1])
	}

	if len(args) != 2 {
		return "Usage: buff <kind> <amount> | remove <id> | clear"
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Sprintf("Invalid amount %q.", args[1])
	}
	var (
		attrs map[modifier.AttributeKind]float64
		skls  map[modifier.SkillKind]float64
	)
	kind := strings.ToLower(args[0])
	switch {
	case modifier.AttributeKind(kind).Valid():
		attrs = map[modifier.AttributeKind]float64{modifier.AttributeKind(kind): amount}
	case modifier.SkillKind(kind).Valid():
		skls = map[modifier.SkillKind]float64{modifier.SkillKind(kind): amount}
	default:
		return fmt.Sprintf("Unknown attribute or skill %q.", args[0])
	}
	id, err := c.ApplyBuff(attrs, skls)
	if err != nil {
		return fmt.Sprintf("Buff failed: %v.", err)
	}
	return fmt.Sprintf("Buff %s applied: %s %+g.", id, kind, amount)
}

func listBuffs(c *character.Character) string {
	var lines []string
	for _, contrib := range c.Modifiers().Active() {
		if !strings.HasPrefix(contrib.ID, "buff:") {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", contrib.ID, formatBonuses(contrib.Attributes, contrib.Skills)))
	}
	if len(lines) == 0 {
		return "No active buffs."
	}
	return "Active buffs:\n" + strings.Join(lines, "\n")
}

// HandleLevel shows the level or, given a number, sets it.
func HandleLevel(sess *Session, args []string) string {
	if len(args) == 0 {
		return fmt.Sprintf("You are level %d.", sess.Character.Level())
	}
	level, err := strconv.Atoi(args[0])
	if err != nil || level < 1 {
		return "Level must be a positive number."
	}
	sess.Character.SetLevel(level)
	return fmt.Sprintf("You are now level %d.", level)
}

// HandleSave persists the character's level, inventory and equipment through sess.Store.
func HandleSave(ctx context.Context, sess *Session) string {
	if sess.Store == nil {
		return "Saving is not configured."
	}
	c := sess.Character
	if err := sess.Store.Save(ctx, c.Name, c.Level(), c.Inventory(), c.Equipment()); err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	return "Loadout saved."
}

// HandleHelp lists commands grouped by category.
func HandleHelp(r *Registry) string {
	cats := r.CommandsByCategory()
	var sb strings.Builder
	for _, cat := range categoryOrder {
		cmds := cats[cat]
		if len(cmds) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("=== %s ===\n", strings.ToUpper(cat[:1])+cat[1:]))
		for _, cmd := range cmds {
			usage := strings.TrimSpace(cmd.Name + " " + cmd.Usage)
			line := fmt.Sprintf("  %-40s %s", usage, cmd.Help)
			if len(cmd.Aliases) > 0 {
				line += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			sb.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// itemAndQuantity resolves "<item> [qty]" arguments. On failure the item is nil
// and msg explains why.
func itemAndQuantity(sess *Session, name string, args []string) (it *item.Item, qty int, msg string) {
	if len(args) == 0 {
		return nil, 0, fmt.Sprintf("Usage: %s <item> [qty]", name)
	}
	ref, qty, err := splitQuantity(args)
	if err != nil {
		return nil, 0, err.Error()
	}
	it, ok := lookupItem(sess.Catalog, ref)
	if !ok {
		return nil, 0, fmt.Sprintf("No item called %q.", ref)
	}
	return it, qty, ""
}

// lookupItem resolves ref as a numeric item ID or a case-insensitive item name.
func lookupItem(cat *item.Catalog, ref string) (*item.Item, bool) {
	if id, err := strconv.Atoi(ref); err == nil {
		return cat.Item(id)
	}
	if it, ok := cat.ByName(ref); ok {
		return it, true
	}
	for _, it := range cat.All() {
		if strings.EqualFold(it.Name, ref) {
			return it, true
		}
	}
	return nil, false
}

// parseSlot accepts a slot key ("left_hand"), or its display name in any case ("Left Hand").
func parseSlot(args []string) (item.SlotKind, bool) {
	key := item.SlotKind(strings.ToLower(strings.Join(args, "_")))
	if key.Valid() {
		return key, true
	}
	name := strings.Join(args, " ")
	for _, slot := range item.SlotKinds() {
		if strings.EqualFold(slot.DisplayName(), name) {
			return slot, true
		}
	}
	return item.SlotNone, false
}

func slotList() string {
	slots := item.SlotKinds()
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func describe(it *item.Item, qty int) string {
	if qty == 1 {
		return it.Name
	}
	return fmt.Sprintf("%s x%d", it.Name, qty)
}

func formatBonuses(attrs map[modifier.AttributeKind]float64, skls map[modifier.SkillKind]float64) string {
	var parts []string
	for _, k := range modifier.AttributeKinds() {
		if v := attrs[k]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+g", k, v))
		}
	}
	for _, k := range modifier.SkillKinds() {
		if v := skls[k]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+g", k, v))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// reason turns a domain error into a short phrase for the console.
func reason(err error) string {
	switch {
	case errors.Is(err, inventory.ErrOverweight):
		return "it would be too heavy to carry"
	case errors.Is(err, inventory.ErrNoSpace):
		return "your inventory is full"
	case errors.Is(err, inventory.ErrInsufficientQuantity):
		return "you are not carrying that many"
	case errors.Is(err, character.ErrNotInInventory):
		return "you are not carrying it"
	case errors.Is(err, character.ErrNoRoomForPrevious):
		return "there is no room in your inventory for what you are wearing"
	case errors.Is(err, equipment.ErrNotEquippable):
		return "it cannot be equipped"
	case errors.Is(err, equipment.ErrSlotEmpty):
		return "nothing is equipped there"
	case errors.Is(err, equipment.ErrLevelTooLow):
		return "your level is too low"
	}
	return err.Error()
}
