// Package command parses console input and dispatches it against a character's
// inventory, equipment and stats.
package command

// Categories for organizing commands.
const (
	CategoryInventory = "inventory"
	CategoryEquipment = "equipment"
	CategoryCharacter = "character"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to the functions in handlers.go.
const (
	HandlerPickup     = "pickup"
	HandlerDrop       = "drop"
	HandlerSort       = "sort"
	HandlerInventory  = "inventory"
	HandlerExamine    = "examine"
	HandlerEquip      = "equip"
	HandlerUnequip    = "unequip"
	HandlerUnequipAll = "unequipall"
	HandlerEquipment  = "equipment"
	HandlerStats      = "stats"
	HandlerBuff       = "buff"
	HandlerLevel      = "level"
	HandlerSave       = "save"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, without the command name.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the handler function.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		// Inventory commands
		{Name: "pickup", Aliases: []string{"get", "take"}, Usage: "<item> [qty]", Help: "Add items to the inventory", Category: CategoryInventory, Handler: HandlerPickup},
		{Name: "drop", Usage: "<item> [qty]", Help: "Remove items from the inventory", Category: CategoryInventory, Handler: HandlerDrop},
		{Name: "sort", Help: "Sort the inventory", Category: CategoryInventory, Handler: HandlerSort},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "List carried items", Category: CategoryInventory, Handler: HandlerInventory},
		{Name: "examine", Aliases: []string{"ex", "info"}, Usage: "<item>", Help: "Describe an item", Category: CategoryInventory, Handler: HandlerExamine},

		// Equipment commands
		{Name: "equip", Aliases: []string{"wear", "wield"}, Usage: "<item>", Help: "Equip a carried item", Category: CategoryEquipment, Handler: HandlerEquip},
		{Name: "unequip", Aliases: []string{"remove"}, Usage: "<slot>", Help: "Move an equipped item back to the inventory", Category: CategoryEquipment, Handler: HandlerUnequip},
		{Name: "unequipall", Aliases: []string{"strip"}, Help: "Unequip every slot", Category: CategoryEquipment, Handler: HandlerUnequipAll},
		{Name: "equipment", Aliases: []string{"eq", "gear"}, Help: "Show equipped items", Category: CategoryEquipment, Handler: HandlerEquipment},

		// Character commands
		{Name: "stats", Aliases: []string{"st", "score"}, Help: "Show attributes, skills and bonuses", Category: CategoryCharacter, Handler: HandlerStats},
		{Name: "buff", Usage: "<kind> <amount> | remove <id> | clear", Help: "Apply or remove a temporary bonus", Category: CategoryCharacter, Handler: HandlerBuff},
		{Name: "level", Aliases: []string{"lvl"}, Usage: "[n]", Help: "Show or set the character level", Category: CategoryCharacter, Handler: HandlerLevel},

		// System commands
		{Name: "save", Help: "Persist the current loadout", Category: CategorySystem, Handler: HandlerSave},
		{Name: "help", Aliases: []string{"?"}, Help: "List available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the session", Category: CategorySystem, Handler: HandlerQuit},
	}
}
