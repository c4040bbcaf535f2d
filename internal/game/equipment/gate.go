package equipment

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/gearcore/internal/game/item"
)

// ErrLevelTooLow is returned by LevelGate when the wearer is under the item's required level.
var ErrLevelTooLow = errors.New("equipment: level too low")

// Gate decides whether an item may be equipped. A non-nil error rejects it.
type Gate interface {
	Allow(it *item.Item) error
}

// GateFunc adapts a plain function to Gate.
type GateFunc func(it *item.Item) error

// Allow calls f(it).
func (f GateFunc) Allow(it *item.Item) error { return f(it) }

// LevelGate rejects items whose RequiredLevel exceeds the level reported by levelFn.
// levelFn is consulted on every check so level changes apply immediately.
func LevelGate(levelFn func() int) Gate {
	return GateFunc(func(it *item.Item) error {
		if level := levelFn(); it.RequiredLevel > level {
			return fmt.Errorf("%q requires level %d, have %d: %w", it.Name, it.RequiredLevel, level, ErrLevelTooLow)
		}
		return nil
	})
}
