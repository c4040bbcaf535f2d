// Package scripting runs data-driven equip rules in a sandboxed GopherLua VM.
// It depends only on item definitions; the wearer's state is passed in per call.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget per script call when none is configured.
const DefaultInstructionLimit = 100_000

// strippedGlobals are base library functions removed from every sandbox: they
// reach the filesystem or module loader, compile arbitrary chunks, or drive the collector.
var strippedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// budgetContext cancels itself once Done has been called n times. GopherLua
// polls Done once per opcode while a context is set, so n is an exact opcode budget.
type budgetContext struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func newBudgetContext(n int) *budgetContext {
	ctx, cancel := context.WithCancel(context.Background())
	b := &budgetContext{Context: ctx, cancel: cancel}
	b.left.Store(int64(n))
	return b
}

// Done spends one unit of budget.
func (b *budgetContext) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// limitInstructions installs a fresh budget of instLimit opcodes on L, or
// DefaultInstructionLimit when instLimit <= 0. Calling the returned cancel
// releases the budget early.
func limitInstructions(L *lua.LState, instLimit int) context.CancelFunc {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	b := newBudgetContext(instLimit)
	L.SetContext(b)
	return b.cancel
}

// NewSandboxedState creates a GopherLua state with only the base, table, string
// and math libraries, minus strippedGlobals, and an initial budget of instLimit
// opcodes for loading scripts.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState. The caller owns it and must call L.Close().
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	// The budget cancels itself when spent.
	_ = limitInstructions(L, instLimit)
	return L
}
