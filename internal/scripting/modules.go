package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gearcore/internal/game/item"
)

// registerModules installs the gear global into L:
//   - gear.slots: array of every equipment slot kind in canonical order
//   - gear.log(msg): writes msg to the rules logger at Info
//
// Precondition: L must be from NewSandboxedState.
func (r *Rules) registerModules(L *lua.LState) {
	gear := L.NewTable()

	slots := L.NewTable()
	for _, s := range item.SlotKinds() {
		slots.Append(lua.LString(s))
	}
	gear.RawSetString("slots", slots)

	gear.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		r.logger.Info("equip rule", zap.String("message", L.CheckString(1)))
		return 0
	}))

	L.SetGlobal("gear", gear)
}
