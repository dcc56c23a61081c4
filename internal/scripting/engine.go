package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for tile scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

func newVM(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. Only the tiles/ subdirectory is read; a missing one is fine.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newVM(log)
	if err := e.loadDir(filepath.Join(scriptsDir, "tiles")); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load tile scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromSource creates an engine from an inline chunk. Used by tests
// and by stagecheck for one-off files.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	e := newVM(log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasFunction reports whether a global Lua function is defined.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// ExplosionContext is what a ground script sees about the bomb going off.
type ExplosionContext struct {
	X, Y   int
	Tile   string
	Radius int
	Pierce bool
	Bomb   uint64 // 0 for handler-made blasts
	Owner  uint64
}

// ExplosionResult is the modifier returned by a ground script.
type ExplosionResult struct {
	Radius int
	Pierce bool
}

// ModifyExplosion calls the named Lua function with a context table. The
// function returns a table {radius=, pierce=} to modify the explosion, or nil
// to leave it alone. Missing fields keep the incoming values. ok is false when
// the function is missing, fails, or returns nil.
func (e *Engine) ModifyExplosion(fnName string, ctx ExplosionContext) (ExplosionResult, bool) {
	keep := ExplosionResult{Radius: ctx.Radius, Pierce: ctx.Pierce}

	fn := e.vm.GetGlobal(fnName)
	if fn == lua.LNil {
		e.log.Warn("lua function not found", zap.String("name", fnName))
		return keep, false
	}

	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("tile", lua.LString(ctx.Tile))
	t.RawSetString("radius", lua.LNumber(ctx.Radius))
	t.RawSetString("pierce", lua.LBool(ctx.Pierce))
	t.RawSetString("bomb", lua.LNumber(ctx.Bomb))
	t.RawSetString("owner", lua.LNumber(ctx.Owner))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua explosion modifier error", zap.String("name", fnName), zap.Error(err))
		return keep, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return keep, false
	}
	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua explosion modifier returned non-table", zap.String("name", fnName))
		return keep, false
	}

	out := keep
	if v := rt.RawGetString("radius"); v != lua.LNil {
		out.Radius = lInt(rt, "radius")
		if out.Radius < 0 {
			out.Radius = 0
		}
	}
	if v := rt.RawGetString("pierce"); v != lua.LNil {
		out.Pierce = lua.LVAsBool(v)
	}
	return out, true
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
