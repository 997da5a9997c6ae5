package mode

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// luaInstructionLimit caps the number of VM instructions a single mask()
// call may execute before it is aborted. This is what keeps a misbehaving
// custom mode (an infinite loop in the script) from hanging the process.
const luaInstructionLimit = 1_000_000

// luaHookInterval is how many VM instructions elapse between checks of the
// running total against luaInstructionLimit. Smaller catches runaway
// scripts sooner at the cost of more hook invocations.
const luaHookInterval = 10_000

// LuaMode wraps a compiled, sandboxed Lua script exposing a global
// function `mask(value, opts)` as a custom mode's Apply implementation.
//
// gopher-lua's LState is not goroutine-safe, but the engine never calls a
// mode from more than one goroutine at a time (see the engine's
// concurrency contract), so one LState per LuaMode is reused across
// calls without synchronization -- unlike the sandboxed plugin host this
// is adapted from, no queueing goroutine is needed here.
type LuaMode struct {
	name         string
	L            *lua.LState
	fn           lua.LValue
	instructions int
}

// dangerousGlobals are removed from the Lua state so a custom mode script
// cannot read files, load other scripts, or otherwise escape the
// sandbox. The engine only needs string/table manipulation to turn a
// value into a masked replacement.
var dangerousGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "require", "io", "os",
}

// NewLuaMode compiles script and binds its global `mask` function as a
// custom mode named name. script must define:
//
//	function mask(value, opts)
//	    return "..." -- masked replacement
//	end
func NewLuaMode(name, script string) (*LuaMode, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})

	for _, g := range dangerousGlobals {
		L.SetGlobal(g, lua.LNil)
	}
	if pkg := L.GetGlobal("package"); pkg != lua.LNil {
		if t, ok := pkg.(*lua.LTable); ok {
			L.SetField(t, "path", lua.LString(""))
			L.SetField(t, "cpath", lua.LString(""))
			if loaded, ok := L.GetField(t, "loaded").(*lua.LTable); ok {
				loaded.RawSetString("io", lua.LNil)
				loaded.RawSetString("os", lua.LNil)
			}
		}
	}

	m := &LuaMode{name: name, L: L}

	L.SetHook(func(l *lua.LState) {
		m.instructions += luaHookInterval
		if m.instructions > luaInstructionLimit {
			l.RaiseError("mode %s: exceeded instruction limit (%d)", m.name, luaInstructionLimit)
		}
	}, lua.MaskCount, luaHookInterval)

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("mode %s: loading lua script: %w", name, err)
	}

	fn := L.GetGlobal("mask")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("mode %s: lua script does not define a global 'mask' function", name)
	}

	m.fn = fn
	return m, nil
}

// Close releases the underlying Lua state.
func (m *LuaMode) Close() {
	m.L.Close()
}

// Definition returns a mode Definition whose Apply calls into the Lua
// script, validated against schema with defaults as its configured
// starting options.
func (m *LuaMode) Definition(schema OptionSchema, defaults map[string]any) Definition {
	return Definition{
		Name:           m.name,
		OptionSchema:   schema,
		DefaultOptions: defaults,
		Apply: func(ctx Context, opts map[string]any) (string, error) {
			return m.call(ctx, opts)
		},
	}
}

func (m *LuaMode) call(ctx Context, opts map[string]any) (string, error) {
	m.instructions = 0

	optsTable := m.L.NewTable()
	for k, v := range opts {
		optsTable.RawSetString(k, toLuaValue(m.L, v))
	}

	m.L.Push(m.fn)
	m.L.Push(lua.LString(ctx.Value))
	m.L.Push(optsTable)

	if err := m.L.PCall(2, 1, nil); err != nil {
		return "", fmt.Errorf("mode %s: lua call failed: %w", m.name, err)
	}

	ret := m.L.Get(-1)
	m.L.Pop(1)

	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("mode %s: lua mask() must return a string, got %s", m.name, ret.Type())
	}
	return string(s), nil
}

func toLuaValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	default:
		return lua.LNil
	}
}
