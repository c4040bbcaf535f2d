package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gearcore/internal/game/equipment"
	"github.com/cory-johannsen/gearcore/internal/game/item"
)

// CanEquipHook is the Lua global consulted by Rules.CanEquip.
// It is called as can_equip(item, level) and returns ok[, reason].
const CanEquipHook = "can_equip"

var (
	// ErrRejected is returned when a rule script refuses an item.
	ErrRejected = errors.New("scripting: rejected by rule")
	// ErrScript is returned when a rule script fails at runtime.
	ErrScript = errors.New("scripting: rule error")
)

// Rules owns one sandboxed VM loaded with every *.lua file of a rules directory.
//
// Rules is safe for concurrent use; calls into the VM are serialised.
type Rules struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	logger    *zap.Logger
}

// NewRules creates a VM, registers the gear module and executes every *.lua
// file in dir in lexicographic order. An empty dir yields Rules with no scripts,
// which allow everything.
//
// Precondition: logger must be non-nil.
// Postcondition: returns error on unreadable dir or Lua load failure.
func NewRules(dir string, instLimit int, logger *zap.Logger) (*Rules, error) {
	r := &Rules{instLimit: instLimit, logger: logger}
	if dir == "" {
		return r, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading rules dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	r.registerModules(L)
	for _, path := range luaFiles {
		cancel := limitInstructions(L, instLimit)
		err := L.DoFile(path)
		cancel()
		if err != nil {
			L.Close()
			return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	r.L = L

	logger.Info("equip rules loaded",
		zap.String("dir", dir),
		zap.Int("scripts", len(luaFiles)),
	)
	return r, nil
}

// Close releases the VM.
func (r *Rules) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.L != nil {
		r.L.Close()
		r.L = nil
	}
}

// CanEquip asks the can_equip hook whether a wearer at level may equip it.
// A missing hook allows the item. A falsy first return rejects it with the optional
// reason. A Lua runtime error, including an exhausted instruction budget, is logged
// at Warn and rejects the item.
//
// Precondition: it must be non-nil.
func (r *Rules) CanEquip(it *item.Item, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.L == nil {
		return nil
	}
	fn := r.L.GetGlobal(CanEquipHook)
	if fn == lua.LNil {
		return nil
	}

	cancel := limitInstructions(r.L, r.instLimit)
	defer cancel()

	if err := r.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    2,
		Protect: true,
	}, itemTable(r.L, it), lua.LNumber(level)); err != nil {
		r.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", CanEquipHook),
			zap.Int("item_id", it.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%q: %w: %v", it.Name, ErrScript, err)
	}

	ok := r.L.Get(-2)
	reason := r.L.Get(-1)
	r.L.Pop(2)

	if lua.LVAsBool(ok) {
		return nil
	}
	if s, isStr := reason.(lua.LString); isStr && s != "" {
		return fmt.Errorf("%q: %w: %s", it.Name, ErrRejected, string(s))
	}
	return fmt.Errorf("%q: %w", it.Name, ErrRejected)
}

// Gate adapts Rules to an equipment gate, reading the wearer's level from levelFn
// on every check.
func (r *Rules) Gate(levelFn func() int) equipment.Gate {
	return equipment.GateFunc(func(it *item.Item) error {
		return r.CanEquip(it, levelFn())
	})
}

// itemTable converts it into the read-only snapshot handed to scripts.
func itemTable(L *lua.LState, it *item.Item) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(it.ID))
	t.RawSetString("name", lua.LString(it.Name))
	t.RawSetString("slot", lua.LString(it.Slot))
	t.RawSetString("weight", lua.LNumber(it.Weight))
	t.RawSetString("value", lua.LNumber(it.Value))
	t.RawSetString("required_level", lua.LNumber(it.RequiredLevel))
	t.RawSetString("armor_rating", lua.LNumber(it.ArmorRating))

	attrs := L.NewTable()
	for k, v := range it.Attributes {
		attrs.RawSetString(string(k), lua.LNumber(v))
	}
	t.RawSetString("attributes", attrs)

	skills := L.NewTable()
	for k, v := range it.Skills {
		skills.RawSetString(string(k), lua.LNumber(v))
	}
	t.RawSetString("skills", skills)
	return t
}
