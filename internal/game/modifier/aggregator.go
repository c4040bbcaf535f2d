package modifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyID is returned when a contribution without an identifier is applied.
var ErrEmptyID = errors.New("modifier: contribution ID must not be empty")

// AttributeSink receives aggregated attribute bonuses.
// SetMaxBonus replaces the stored bonus; it must never accumulate.
type AttributeSink interface {
	SetMaxBonus(kind AttributeKind, value float64)
}

// SkillSink receives aggregated skill bonuses.
// SetEquipmentBonus replaces the stored bonus; ClearEquipmentBonus resets it to zero.
type SkillSink interface {
	SetEquipmentBonus(kind SkillKind, value float64)
	ClearEquipmentBonus(kind SkillKind)
}

// Contribution is a tagged bundle of additive deltas from a single source.
type Contribution struct {
	// ID identifies the source so the contribution can be retracted.
	ID string
	// Attributes maps attribute kinds to additive deltas.
	Attributes map[AttributeKind]float64
	// Skills maps skill kinds to additive deltas.
	Skills map[SkillKind]float64
}

func (c Contribution) clone() Contribution {
	out := Contribution{ID: c.ID}
	if len(c.Attributes) > 0 {
		out.Attributes = make(map[AttributeKind]float64, len(c.Attributes))
		for k, v := range c.Attributes {
			out.Attributes[k] = v
		}
	}
	if len(c.Skills) > 0 {
		out.Skills = make(map[SkillKind]float64, len(c.Skills))
		for k, v := range c.Skills {
			out.Skills[k] = v
		}
	}
	return out
}

// Totals is the derived sum of all active contributions, one entry per tracked kind.
type Totals struct {
	Attributes map[AttributeKind]float64
	Skills     map[SkillKind]float64
}

func zeroTotals() Totals {
	t := Totals{
		Attributes: make(map[AttributeKind]float64, len(attributeKinds)),
		Skills:     make(map[SkillKind]float64, len(skillKinds)),
	}
	for _, k := range attributeKinds {
		t.Attributes[k] = 0
	}
	for _, k := range skillKinds {
		t.Skills[k] = 0
	}
	return t
}

// NewSourceID returns a unique contribution ID of the form "<prefix>:<uuid>" for
// sources that have no natural identity of their own (buffs, auras).
func NewSourceID(prefix string) string {
	return prefix + ":" + uuid.New().String()
}

// Aggregator owns the active contributions and is the single writer of derived
// totals to its sinks.
// It is not safe for concurrent use; the caller must serialise access.
type Aggregator struct {
	contributions map[string]Contribution
	attrs         AttributeSink
	skills        SkillSink
	totals        Totals
}

// NewAggregator creates an empty Aggregator pushing to the given sinks.
//
// Precondition: none; a nil sink is skipped during recompute.
// Postcondition: Len() == 0 and every total is zero.
func NewAggregator(attrs AttributeSink, skills SkillSink) *Aggregator {
	return &Aggregator{
		contributions: make(map[string]Contribution),
		attrs:         attrs,
		skills:        skills,
		totals:        zeroTotals(),
	}
}

// Apply stores c, replacing any contribution with the same ID, then recomputes.
//
// Precondition: c.ID must be non-empty.
// Postcondition: Has(c.ID) is true and totals reflect c exactly once.
func (a *Aggregator) Apply(c Contribution) error {
	if c.ID == "" {
		return ErrEmptyID
	}
	a.contributions[c.ID] = c.clone()
	a.Recompute()
	return nil
}

// Replace retracts oldID when present and stores c, recomputing once.
// An empty oldID retracts nothing.
//
// Precondition: c.ID must be non-empty.
// Postcondition: Has(oldID) is false unless oldID == c.ID; Has(c.ID) is true.
func (a *Aggregator) Replace(oldID string, c Contribution) error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if oldID != "" {
		delete(a.contributions, oldID)
	}
	a.contributions[c.ID] = c.clone()
	a.Recompute()
	return nil
}

// Remove retracts the contribution with the given id.
// It reports false and skips the recompute when id is not present.
func (a *Aggregator) Remove(id string) bool {
	if _, ok := a.contributions[id]; !ok {
		return false
	}
	delete(a.contributions, id)
	a.Recompute()
	return true
}

// RemoveMany retracts every listed id that is present and recomputes once.
//
// Postcondition: returns the number of contributions removed; no recompute when 0.
func (a *Aggregator) RemoveMany(ids ...string) int {
	removed := 0
	for _, id := range ids {
		if _, ok := a.contributions[id]; ok {
			delete(a.contributions, id)
			removed++
		}
	}
	if removed > 0 {
		a.Recompute()
	}
	return removed
}

// RemoveWithPrefix retracts every contribution whose ID starts with prefix.
//
// Postcondition: returns the number removed; no recompute when 0.
func (a *Aggregator) RemoveWithPrefix(prefix string) int {
	var ids []string
	for id := range a.contributions {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	return a.RemoveMany(ids...)
}

// Clear removes every contribution and recomputes once.
//
// Postcondition: Len() == 0 and every sink value is zero.
func (a *Aggregator) Clear() {
	a.contributions = make(map[string]Contribution)
	a.Recompute()
}

// Recompute derives the totals from scratch and pushes each tracked kind to the sinks.
// Every tracked kind starts at zero, so kinds no longer contributed to are reset.
// Deltas for kinds outside the tracked set are ignored.
//
// Postcondition: calling Recompute again without intervening changes pushes identical values.
func (a *Aggregator) Recompute() {
	totals := zeroTotals()
	// Summed in ID order so float rounding is identical across recomputes.
	ids := make([]string, 0, len(a.contributions))
	for id := range a.contributions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := a.contributions[id]
		for k, v := range c.Attributes {
			if _, tracked := totals.Attributes[k]; tracked {
				totals.Attributes[k] += v
			}
		}
		for k, v := range c.Skills {
			if _, tracked := totals.Skills[k]; tracked {
				totals.Skills[k] += v
			}
		}
	}
	a.totals = totals

	if a.attrs != nil {
		for _, k := range attributeKinds {
			a.attrs.SetMaxBonus(k, totals.Attributes[k])
		}
	}
	if a.skills != nil {
		for _, k := range skillKinds {
			if v := totals.Skills[k]; v != 0 {
				a.skills.SetEquipmentBonus(k, v)
			} else {
				a.skills.ClearEquipmentBonus(k)
			}
		}
	}
}

// Has reports whether a contribution with id is active.
func (a *Aggregator) Has(id string) bool {
	_, ok := a.contributions[id]
	return ok
}

// Len returns the number of active contributions.
func (a *Aggregator) Len() int { return len(a.contributions) }

// Attribute returns the current total for kind.
func (a *Aggregator) Attribute(kind AttributeKind) float64 { return a.totals.Attributes[kind] }

// Skill returns the current total for kind.
func (a *Aggregator) Skill(kind SkillKind) float64 { return a.totals.Skills[kind] }

// Totals returns a copy of the most recently computed totals.
func (a *Aggregator) Totals() Totals {
	out := Totals{
		Attributes: make(map[AttributeKind]float64, len(a.totals.Attributes)),
		Skills:     make(map[SkillKind]float64, len(a.totals.Skills)),
	}
	for k, v := range a.totals.Attributes {
		out.Attributes[k] = v
	}
	for k, v := range a.totals.Skills {
		out.Skills[k] = v
	}
	return out
}

// Active returns copies of all active contributions sorted by ID.
func (a *Aggregator) Active() []Contribution {
	out := make([]Contribution, 0, len(a.contributions))
	for _, c := range a.contributions {
		out = append(out, c.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// String renders the non-zero totals, for logs and debugging.
func (t Totals) String() string {
	var parts []string
	for _, k := range attributeKinds {
		if v := t.Attributes[k]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%+g", k, v))
		}
	}
	for _, k := range skillKinds {
		if v := t.Skills[k]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%+g", k, v))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
