package item_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gearcore/internal/game/item"
	"github.com/cory-johannsen/gearcore/internal/game/modifier"
)

func TestItem_Validate_RejectsZeroID(t *testing.T) {
	it := &item.Item{Name: "Ore"}
	assert.Error(t, it.Validate())
}

func TestItem_Validate_RejectsEmptyName(t *testing.T) {
	it := &item.Item{ID: 1}
	assert.Error(t, it.Validate())
}

func TestItem_Validate_RejectsNegativeWeight(t *testing.T) {
	it := &item.Item{ID: 1, Name: "Ore", Weight: -1}
	assert.Error(t, it.Validate())
}

func TestItem_Validate_RejectsStackableWithoutMaxStack(t *testing.T) {
	it := &item.Item{ID: 1, Name: "Ore", Stackable: true}
	assert.Error(t, it.Validate())
}

func TestItem_Validate_RejectsUnknownSlot(t *testing.T) {
	it := &item.Item{ID: 1, Name: "Tail Ring", Slot: "tail"}
	assert.Error(t, it.Validate())
}

func TestItem_Validate_RejectsStackableEquipment(t *testing.T) {
	it := &item.Item{ID: 1, Name: "Helmet", Slot: item.SlotHead, Stackable: true, MaxStack: 5}
	assert.Error(t, it.Validate())
}

func TestItem_Validate_RejectsUntrackedModifiers(t *testing.T) {
	it := &item.Item{
		ID:         1,
		Name:       "Charm",
		Slot:       item.SlotHands,
		Attributes: map[modifier.AttributeKind]float64{"luck": 1},
	}
	assert.Error(t, it.Validate())

	it = &item.Item{
		ID:     1,
		Name:   "Charm",
		Slot:   item.SlotHands,
		Skills: map[modifier.SkillKind]float64{"juggling": 1},
	}
	assert.Error(t, it.Validate())
}

func TestItem_Validate_AcceptsEquipment(t *testing.T) {
	it := &item.Item{
		ID:            10,
		Name:          "Helmet",
		Slot:          item.SlotHead,
		Weight:        2,
		RequiredLevel: 3,
		Attributes:    map[modifier.AttributeKind]float64{modifier.AttributeMaxHP: 10},
	}
	assert.NoError(t, it.Validate())
}

func TestItem_EffectiveMaxStack(t *testing.T) {
	assert.Equal(t, 1, (&item.Item{MaxStack: 20}).EffectiveMaxStack(), "non-stackable stacks to 1")
	assert.Equal(t, 20, (&item.Item{Stackable: true, MaxStack: 20}).EffectiveMaxStack())
	assert.Equal(t, 1, (&item.Item{Stackable: true}).EffectiveMaxStack())
}

func TestItem_Contribution(t *testing.T) {
	it := &item.Item{
		ID:     7,
		Skills: map[modifier.SkillKind]float64{modifier.SkillMeleeCombat: 2},
	}
	c := it.Contribution()
	assert.Equal(t, "item:7", c.ID)
	assert.Equal(t, 2.0, c.Skills[modifier.SkillMeleeCombat])
}

func TestItem_Info(t *testing.T) {
	it := &item.Item{Name: "Ore", Description: "Raw ore.", Weight: 3, Value: 4}
	assert.Equal(t, "Name: Ore\nDescription: Raw ore.\nWeight: 3.00\nValue: 4", it.Info())
}

func TestSlotKind_DisplayName(t *testing.T) {
	assert.Equal(t, "Left Hand", item.SlotLeftHand.DisplayName())
	assert.Equal(t, "None", item.SlotNone.DisplayName())
	assert.False(t, item.SlotNone.Valid())
	assert.Len(t, item.SlotKinds(), 8)
}

func TestLoadItems_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ore.yaml"), []byte(`id: 1
name: Ore
description: Raw iron ore.
weight: 3
value: 2
stackable: true
max_stack: 5
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helmet.yml"), []byte(`id: 2
name: Helmet
weight: 2.5
slot: head
required_level: 2
armor_rating: 4
attributes:
  max_hp: 10
skills:
  toughness: 1.5
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644))

	items, err := item.LoadItems(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)

	cat, err := item.NewCatalogFrom(items)
	require.NoError(t, err)

	ore, ok := cat.Item(1)
	require.True(t, ok)
	assert.True(t, ore.Stackable)
	assert.Equal(t, 5, ore.MaxStack)

	helmet, ok := cat.Item(2)
	require.True(t, ok)
	assert.Equal(t, item.SlotHead, helmet.Slot)
	assert.Equal(t, 10.0, helmet.Attributes[modifier.AttributeMaxHP])
	assert.Equal(t, 1.5, helmet.Skills[modifier.SkillToughness])
}

func TestLoadItems_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: 0\nname: ''\n"), 0644))
	_, err := item.LoadItems(dir)
	assert.Error(t, err)
}

func TestLoadItems_MissingDir(t *testing.T) {
	_, err := item.LoadItems(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCatalog_RejectsDuplicate(t *testing.T) {
	c := item.NewCatalog()
	it := &item.Item{ID: 1, Name: "Ore"}
	require.NoError(t, c.Register(it))
	assert.Error(t, c.Register(it))
	assert.Error(t, c.Register(nil))
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_ByNameAndAll(t *testing.T) {
	c, err := item.NewCatalogFrom([]*item.Item{
		{ID: 3, Name: "Ring"},
		{ID: 1, Name: "Ore"},
	})
	require.NoError(t, err)
	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID)

	ring, ok := c.ByName("Ring")
	require.True(t, ok)
	assert.Equal(t, 3, ring.ID)
	_, ok = c.ByName("Sword")
	assert.False(t, ok)
	_, ok = c.Item(99)
	assert.False(t, ok)
}

func TestProperty_Item_ValidEquipmentAccepted(t *testing.T) {
	slots := item.SlotKinds()
	rapid.Check(t, func(rt *rapid.T) {
		it := &item.Item{
			ID:     rapid.IntRange(1, 10000).Draw(rt, "id"),
			Name:   rapid.StringMatching(`[A-Z][a-zA-Z ]{2,29}`).Draw(rt, "name"),
			Weight: rapid.Float64Range(0, 100).Draw(rt, "weight"),
			Slot:   rapid.SampledFrom(slots).Draw(rt, "slot"),
		}
		if err := it.Validate(); err != nil {
			rt.Fatalf("expected valid Item to pass validation, got: %v", err)
		}
	})
}
