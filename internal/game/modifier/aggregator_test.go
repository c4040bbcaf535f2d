package modifier_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gearcore/internal/game/modifier"
)

// recordingSink captures every push so tests can assert on replacement semantics.
type recordingSink struct {
	attrs    map[modifier.AttributeKind]float64
	skills   map[modifier.SkillKind]float64
	attrSets int
	clears   int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		attrs:  make(map[modifier.AttributeKind]float64),
		skills: make(map[modifier.SkillKind]float64),
	}
}

func (s *recordingSink) SetMaxBonus(kind modifier.AttributeKind, value float64) {
	s.attrs[kind] = value
	s.attrSets++
}

func (s *recordingSink) SetEquipmentBonus(kind modifier.SkillKind, value float64) {
	s.skills[kind] = value
}

func (s *recordingSink) ClearEquipmentBonus(kind modifier.SkillKind) {
	s.skills[kind] = 0
	s.clears++
}

func hp(id string, v float64) modifier.Contribution {
	return modifier.Contribution{
		ID:         id,
		Attributes: map[modifier.AttributeKind]float64{modifier.AttributeMaxHP: v},
	}
}

func newAgg() (*modifier.Aggregator, *recordingSink) {
	sink := newRecordingSink()
	return modifier.NewAggregator(sink, sink), sink
}

func TestAggregator_Apply_PushesTotals(t *testing.T) {
	agg, sink := newAgg()
	require.NoError(t, agg.Apply(modifier.Contribution{
		ID:         "item:1",
		Attributes: map[modifier.AttributeKind]float64{modifier.AttributeMaxHP: 10, modifier.AttributeMaxMana: 5},
		Skills:     map[modifier.SkillKind]float64{modifier.SkillMeleeCombat: 2.5},
	}))
	assert.Equal(t, 10.0, sink.attrs[modifier.AttributeMaxHP])
	assert.Equal(t, 5.0, sink.attrs[modifier.AttributeMaxMana])
	assert.Equal(t, 0.0, sink.attrs[modifier.AttributeMaxStamina])
	assert.Equal(t, 2.5, sink.skills[modifier.SkillMeleeCombat])
	assert.Equal(t, 10.0, agg.Attribute(modifier.AttributeMaxHP))
	assert.Equal(t, 2.5, agg.Skill(modifier.SkillMeleeCombat))
}

func TestAggregator_Apply_EmptyID(t *testing.T) {
	agg, sink := newAgg()
	err := agg.Apply(hp("", 3))
	assert.ErrorIs(t, err, modifier.ErrEmptyID)
	assert.Equal(t, 0, agg.Len())
	assert.Equal(t, 0, sink.attrSets)
}

func TestAggregator_Apply_SameIDReplaces(t *testing.T) {
	agg, sink := newAgg()
	require.NoError(t, agg.Apply(hp("helmet", 10)))
	require.NoError(t, agg.Apply(hp("helmet", 4)))
	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, 4.0, sink.attrs[modifier.AttributeMaxHP])
}

func TestAggregator_Apply_CopiesContribution(t *testing.T) {
	agg, _ := newAgg()
	c := hp("ring", 5)
	require.NoError(t, agg.Apply(c))
	c.Attributes[modifier.AttributeMaxHP] = 500
	agg.Recompute()
	assert.Equal(t, 5.0, agg.Attribute(modifier.AttributeMaxHP))
}

func TestAggregator_Remove(t *testing.T) {
	agg, sink := newAgg()
	require.NoError(t, agg.Apply(hp("a", 10)))
	require.NoError(t, agg.Apply(hp("b", 5)))

	assert.True(t, agg.Remove("a"))
	assert.Equal(t, 5.0, sink.attrs[modifier.AttributeMaxHP])

	before := sink.attrSets
	assert.False(t, agg.Remove("a"), "second removal is a no-op")
	assert.Equal(t, before, sink.attrSets, "absent id must not recompute")
}

func TestAggregator_Replace_RetractsOld(t *testing.T) {
	agg, sink := newAgg()
	require.NoError(t, agg.Apply(hp("item:1", 10)))
	before := sink.attrSets
	require.NoError(t, agg.Replace("item:1", hp("item:2", 3)))
	assert.False(t, agg.Has("item:1"))
	assert.True(t, agg.Has("item:2"))
	assert.Equal(t, 3.0, sink.attrs[modifier.AttributeMaxHP])
	assert.Equal(t, before+len(modifier.AttributeKinds()), sink.attrSets, "one recompute")
}

func TestAggregator_RemoveMany_SingleRecompute(t *testing.T) {
	agg, sink := newAgg()
	require.NoError(t, agg.Apply(hp("a", 1)))
	require.NoError(t, agg.Apply(hp("b", 2)))
	require.NoError(t, agg.Apply(hp("c", 4)))
	before := sink.attrSets

	n := agg.RemoveMany("a", "c", "missing")
	assert.Equal(t, 2, n)
	assert.Equal(t, 2.0, sink.attrs[modifier.AttributeMaxHP])
	assert.Equal(t, before+len(modifier.AttributeKinds()), sink.attrSets)

	before = sink.attrSets
	assert.Equal(t, 0, agg.RemoveMany("missing"))
	assert.Equal(t, before, sink.attrSets)
}

func TestAggregator_RemoveWithPrefix(t *testing.T) {
	agg, _ := newAgg()
	require.NoError(t, agg.Apply(hp(modifier.NewSourceID("buff"), 1)))
	require.NoError(t, agg.Apply(hp(modifier.NewSourceID("buff"), 2)))
	require.NoError(t, agg.Apply(hp("item:7", 4)))

	assert.Equal(t, 2, agg.RemoveWithPrefix("buff:"))
	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, 4.0, agg.Attribute(modifier.AttributeMaxHP))
}

func TestAggregator_Clear(t *testing.T) {
	agg, sink := newAgg()
	require.NoError(t, agg.Apply(modifier.Contribution{
		ID:     "x",
		Skills: map[modifier.SkillKind]float64{modifier.SkillToughness: 3},
	}))
	agg.Clear()
	assert.Equal(t, 0, agg.Len())
	assert.Equal(t, 0.0, sink.skills[modifier.SkillToughness])
	for _, k := range modifier.AttributeKinds() {
		assert.Equal(t, 0.0, sink.attrs[k])
	}
}

func TestAggregator_UntrackedKindsIgnored(t *testing.T) {
	agg, sink := newAgg()
	require.NoError(t, agg.Apply(modifier.Contribution{
		ID:         "odd",
		Attributes: map[modifier.AttributeKind]float64{"luck": 9},
	}))
	_, pushed := sink.attrs["luck"]
	assert.False(t, pushed)
	assert.Equal(t, 0.0, agg.Attribute("luck"))
}

func TestAggregator_NilSinksSkipped(t *testing.T) {
	agg := modifier.NewAggregator(nil, nil)
	require.NoError(t, agg.Apply(hp("a", 3)))
	assert.Equal(t, 3.0, agg.Attribute(modifier.AttributeMaxHP))
}

func TestAggregator_ZeroSkillTotalUsesClear(t *testing.T) {
	agg, sink := newAgg()
	before := sink.clears
	agg.Recompute()
	assert.Equal(t, before+len(modifier.SkillKinds()), sink.clears)
}

func TestAggregator_Active_SortedCopies(t *testing.T) {
	agg, _ := newAgg()
	require.NoError(t, agg.Apply(hp("b", 1)))
	require.NoError(t, agg.Apply(hp("a", 1)))
	active := agg.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "b", active[1].ID)
	active[0].Attributes[modifier.AttributeMaxHP] = 99
	agg.Recompute()
	assert.Equal(t, 2.0, agg.Attribute(modifier.AttributeMaxHP))
}

func TestTotals_String(t *testing.T) {
	agg, _ := newAgg()
	assert.Equal(t, "none", agg.Totals().String())
	require.NoError(t, agg.Apply(hp("a", 10)))
	assert.Equal(t, "max_hp=+10", agg.Totals().String())
}

func TestNewSourceID_UniqueWithPrefix(t *testing.T) {
	a := modifier.NewSourceID("buff")
	b := modifier.NewSourceID("buff")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "buff:"))
}

func TestKinds_Valid(t *testing.T) {
	for _, k := range modifier.AttributeKinds() {
		assert.True(t, k.Valid())
	}
	for _, k := range modifier.SkillKinds() {
		assert.True(t, k.Valid())
	}
	assert.False(t, modifier.AttributeKind("luck").Valid())
	assert.False(t, modifier.SkillKind("juggling").Valid())
}

func TestPropertyRecompute_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		agg, sink := newAgg()
		n := rapid.IntRange(0, 10).Draw(t, "n")
		var last modifier.Contribution
		for i := 0; i < n; i++ {
			last = modifier.Contribution{
				ID: rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "id"),
				Attributes: map[modifier.AttributeKind]float64{
					modifier.AttributeMaxHP: rapid.Float64Range(-50, 50).Draw(t, "hp"),
				},
				Skills: map[modifier.SkillKind]float64{
					modifier.SkillRangedCombat: rapid.Float64Range(-5, 5).Draw(t, "ranged"),
				},
			}
			if err := agg.Apply(last); err != nil {
				t.Fatalf("apply: %v", err)
			}
		}
		first := copyAttrs(sink.attrs)
		firstSkills := copySkills(sink.skills)
		if n > 0 {
			if err := agg.Apply(last); err != nil {
				t.Fatalf("reapply: %v", err)
			}
		} else {
			agg.Recompute()
		}
		for k, v := range first {
			if sink.attrs[k] != v {
				t.Fatalf("attribute %s drifted: %v -> %v", k, v, sink.attrs[k])
			}
		}
		for k, v := range firstSkills {
			if sink.skills[k] != v {
				t.Fatalf("skill %s drifted: %v -> %v", k, v, sink.skills[k])
			}
		}
	})
}

func TestPropertyTotals_EqualSumOfActive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		agg, _ := newAgg()
		ids := []string{"a", "b", "c", "d", "e"}
		ops := rapid.IntRange(1, 30).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "id")
			if rapid.Bool().Draw(t, "apply") {
				v := float64(rapid.IntRange(-20, 20).Draw(t, "v"))
				_ = agg.Apply(hp(id, v))
			} else {
				agg.Remove(id)
			}
		}
		var want float64
		for _, c := range agg.Active() {
			want += c.Attributes[modifier.AttributeMaxHP]
		}
		if got := agg.Attribute(modifier.AttributeMaxHP); got != want {
			t.Fatalf("total %v != sum of active %v", got, want)
		}
	})
}

func copyAttrs(m map[modifier.AttributeKind]float64) map[modifier.AttributeKind]float64 {
	out := make(map[modifier.AttributeKind]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySkills(m map[modifier.SkillKind]float64) map[modifier.SkillKind]float64 {
	out := make(map[modifier.SkillKind]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
