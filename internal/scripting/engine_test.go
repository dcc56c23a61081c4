package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const modifiers = `
function double_radius(ctx)
  return { radius = ctx.radius * 2 }
end

function pierce_on_lava(ctx)
  if ctx.tile == "lava" then
    return { pierce = true }
  end
  return nil
end

function broken(ctx)
  error("nope")
end

function wrong_type(ctx)
  return 7
end
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngineFromSource(modifiers, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestModifyExplosion(t *testing.T) {
	e := newTestEngine(t)

	res, ok := e.ModifyExplosion("double_radius", ExplosionContext{Radius: 3})
	require.True(t, ok)
	assert.Equal(t, ExplosionResult{Radius: 6}, res)

	res, ok = e.ModifyExplosion("pierce_on_lava", ExplosionContext{Tile: "lava", Radius: 2})
	require.True(t, ok)
	assert.Equal(t, ExplosionResult{Radius: 2, Pierce: true}, res, "missing fields keep incoming values")

	_, ok = e.ModifyExplosion("pierce_on_lava", ExplosionContext{Tile: "grass"})
	assert.False(t, ok, "nil result means no change")
}

func TestModifyExplosion_Failures(t *testing.T) {
	e := newTestEngine(t)
	for _, fn := range []string{"missing", "broken", "wrong_type"} {
		res, ok := e.ModifyExplosion(fn, ExplosionContext{Radius: 4, Pierce: true})
		assert.False(t, ok, fn)
		assert.Equal(t, ExplosionResult{Radius: 4, Pierce: true}, res, fn)
	}
	assert.True(t, e.HasFunction("broken"))
	assert.False(t, e.HasFunction("missing"))
}

func TestNewEngine_LoadsTileDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles", "a.lua"),
		[]byte("function from_file(ctx) return { radius = 1 } end"), 0o644))

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.True(t, e.HasFunction("from_file"))

	empty, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err, "missing tiles dir is not an error")
	empty.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles", "bad.lua"), []byte("function ("), 0o644))
	_, err = NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}
