// Package item defines the static item definitions shared by inventories and
// equipment sets, and the catalog that owns them.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gearcore/internal/game/modifier"
)

// SlotKind identifies the body slot an equippable item occupies.
// The zero value SlotNone marks an item that cannot be equipped.
type SlotKind string

const (
	SlotNone      SlotKind = ""
	SlotHead      SlotKind = "head"
	SlotTorso     SlotKind = "torso"
	SlotArms      SlotKind = "arms"
	SlotHands     SlotKind = "hands"
	SlotLeftHand  SlotKind = "left_hand"
	SlotRightHand SlotKind = "right_hand"
	SlotLegs      SlotKind = "legs"
	SlotFeet      SlotKind = "feet"
)

// slotKinds lists every equippable slot in canonical order.
var slotKinds = []SlotKind{
	SlotHead,
	SlotTorso,
	SlotArms,
	SlotHands,
	SlotLeftHand,
	SlotRightHand,
	SlotLegs,
	SlotFeet,
}

var slotDisplayNames = map[SlotKind]string{
	SlotHead:      "Head",
	SlotTorso:     "Torso",
	SlotArms:      "Arms",
	SlotHands:     "Hands",
	SlotLeftHand:  "Left Hand",
	SlotRightHand: "Right Hand",
	SlotLegs:      "Legs",
	SlotFeet:      "Feet",
}

// SlotKinds returns every equippable slot kind in canonical order.
//
// Postcondition: returned slice is a fresh copy and excludes SlotNone.
func SlotKinds() []SlotKind {
	out := make([]SlotKind, len(slotKinds))
	copy(out, slotKinds)
	return out
}

// Valid reports whether s is an equippable slot kind (SlotNone is not).
func (s SlotKind) Valid() bool {
	_, ok := slotDisplayNames[s]
	return ok
}

// DisplayName returns the human-readable label for s, or "None" for SlotNone.
func (s SlotKind) DisplayName() string {
	if label, ok := slotDisplayNames[s]; ok {
		return label
	}
	if s == SlotNone {
		return "None"
	}
	return string(s)
}

// Item is the immutable definition of an item, loaded once into a Catalog and
// referenced (never copied) by inventories and equipment sets.
type Item struct {
	ID            int                                `yaml:"id"`
	Name          string                             `yaml:"name"`
	Description   string                             `yaml:"description"`
	Weight        float64                            `yaml:"weight"`
	Value         int                                `yaml:"value"`
	Stackable     bool                               `yaml:"stackable"`
	MaxStack      int                                `yaml:"max_stack"`
	Slot          SlotKind                           `yaml:"slot"`
	RequiredLevel int                                `yaml:"required_level"`
	ArmorRating   int                                `yaml:"armor_rating"`
	Attributes    map[modifier.AttributeKind]float64 `yaml:"attributes"`
	Skills        map[modifier.SkillKind]float64     `yaml:"skills"`
}

// EffectiveMaxStack returns the largest quantity a single slot may hold.
// Non-stackable items always stack to 1.
func (it *Item) EffectiveMaxStack() int {
	if !it.Stackable || it.MaxStack < 1 {
		return 1
	}
	return it.MaxStack
}

// Equippable reports whether the item declares an equipment slot.
func (it *Item) Equippable() bool { return it.Slot != SlotNone }

// ContributionID is the modifier contribution identifier used while the item is equipped.
func (it *Item) ContributionID() string { return fmt.Sprintf("item:%d", it.ID) }

// Contribution builds the modifier contribution this item provides when equipped.
func (it *Item) Contribution() modifier.Contribution {
	return modifier.Contribution{
		ID:         it.ContributionID(),
		Attributes: it.Attributes,
		Skills:     it.Skills,
	}
}

// Info returns a multi-line summary of the item for display.
func (it *Item) Info() string {
	return fmt.Sprintf("Name: %s\nDescription: %s\nWeight: %.2f\nValue: %d",
		it.Name, it.Description, it.Weight, it.Value)
}

// Validate checks that the Item satisfies its invariants.
//
// Precondition: it is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (it *Item) Validate() error {
	var errs []error
	if it.ID <= 0 {
		errs = append(errs, errors.New("id must be > 0"))
	}
	if it.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if it.Weight < 0 {
		errs = append(errs, errors.New("weight must be >= 0"))
	}
	if it.Value < 0 {
		errs = append(errs, errors.New("value must be >= 0"))
	}
	if it.Stackable && it.MaxStack < 1 {
		errs = append(errs, errors.New("max_stack must be >= 1 for stackable items"))
	}
	if it.Slot != SlotNone && !it.Slot.Valid() {
		errs = append(errs, fmt.Errorf("slot %q is not a valid equipment slot", it.Slot))
	}
	if it.Slot != SlotNone && it.Stackable {
		errs = append(errs, errors.New("equippable items must not be stackable"))
	}
	if it.RequiredLevel < 0 {
		errs = append(errs, errors.New("required_level must be >= 0"))
	}
	for k := range it.Attributes {
		if !k.Valid() {
			errs = append(errs, fmt.Errorf("attribute %q is not a tracked attribute", k))
		}
	}
	for k := range it.Skills {
		if !k.Valid() {
			errs = append(errs, fmt.Errorf("skill %q is not a tracked skill", k))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an Item,
// validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Items or the first encountered error.
func LoadItems(dir string) ([]*Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*Item
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var it Item
		if err := yaml.Unmarshal(data, &it); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &it)
	}
	if items == nil {
		items = []*Item{}
	}
	return items, nil
}
