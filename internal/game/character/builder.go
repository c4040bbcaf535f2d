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
	"github.com/cory-johannsen/gearcore/internal/observability"
)

// Default inventory limits used when the builder is not given any.
const (
	DefaultInventorySlots = 20
	DefaultMaxWeight      = 100.0
)

// Builder assembles a Character with every collaborator injected explicitly.
type Builder struct {
	name      string
	level     int
	slots     int
	maxWeight float64
	baseMax   map[modifier.AttributeKind]float64
	gates     []equipment.Gate
	logger    *zap.Logger
}

// NewBuilder starts a Builder for a level 1 character named name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:      name,
		level:     1,
		slots:     DefaultInventorySlots,
		maxWeight: DefaultMaxWeight,
	}
}

// WithLevel sets the starting level.
func (b *Builder) WithLevel(level int) *Builder {
	b.level = level
	return b
}

// WithInventory sets the inventory slot count and weight ceiling.
func (b *Builder) WithInventory(slots int, maxWeight float64) *Builder {
	b.slots = slots
	b.maxWeight = maxWeight
	return b
}

// WithBaseMax overrides base attribute maximums.
func (b *Builder) WithBaseMax(base map[modifier.AttributeKind]float64) *Builder {
	b.baseMax = base
	return b
}

// WithGate adds an equip gate consulted after the level gate.
func (b *Builder) WithGate(g equipment.Gate) *Builder {
	b.gates = append(b.gates, g)
	return b
}

// WithLogger sets the logger. A nil logger discards output.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build wires attributes and skills behind a modifier aggregator, hands that
// aggregator to the equipment set, and creates the inventory.
//
// Precondition: name must be non-empty; level >= 1; slots >= 1; maxWeight >= 0.
// Postcondition: Returns a Character with empty gear and zero bonuses, or a non-nil error.
func (b *Builder) Build() (*Character, error) {
	if b.name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if b.level < 1 {
		return nil, fmt.Errorf("character level must be >= 1, got %d", b.level)
	}
	if b.slots < 1 {
		return nil, fmt.Errorf("inventory slots must be >= 1, got %d", b.slots)
	}
	if b.maxWeight < 0 {
		return nil, fmt.Errorf("inventory max weight must be >= 0, got %v", b.maxWeight)
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Character{
		Name:       b.name,
		level:      b.level,
		attributes: attributes.NewWithBase(b.baseMax),
		skills:     skills.New(),
		inventory:  inventory.New(b.slots, b.maxWeight),
		logger:     observability.ForCharacter(logger, b.name),
	}
	c.modifiers = modifier.NewAggregator(c.attributes, c.skills)

	opts := []equipment.Option{equipment.WithGate(equipment.LevelGate(c.Level))}
	for _, g := range b.gates {
		opts = append(opts, equipment.WithGate(g))
	}
	c.equipment = equipment.New(c.modifiers, opts...)

	c.inventory.OnChange(func(inv *inventory.Inventory) {
		c.logger.Debug("inventory changed",
			zap.Int("free_slots", inv.EmptySlotCount()),
			zap.Float64("weight", inv.CurrentWeight()),
		)
	})
	c.equipment.OnChange(func(slot item.SlotKind, it *item.Item) {
		name := ""
		if it != nil {
			name = it.Name
		}
		c.logger.Debug("equipment changed", zap.String("slot", string(slot)), zap.String("item", name))
	})
	return c, nil
}
