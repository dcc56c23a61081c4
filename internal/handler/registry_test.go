package handler_test

import (
	"errors"
	"testing"

	"github.com/blastgrid/server/internal/config"
	"github.com/blastgrid/server/internal/data"
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type inert struct{}

func TestRegistry_LookupsAndDuplicates(t *testing.T) {
	first := &handler.Breakable{Sfx: "a"}
	second := &handler.Breakable{Sfx: "b"}
	power := &handler.Power{Boost: 10}

	reg := handler.NewRegistry(zap.NewNop())
	reg.Add(
		handler.Group{Name: "first", Tiles: []world.TileID{"crate", "barrel", ""}, Handler: first},
		handler.Group{Name: "second", Tiles: []world.TileID{"crate"}, Handler: second},
		handler.Group{Name: "power", Tiles: []world.TileID{"power"}, Handler: power},
		handler.Group{Name: "nothing", Tiles: []world.TileID{"x"}, Handler: inert{}},
	)
	diag := reg.Rebuild()

	h, ok := reg.Destructible("crate")
	require.True(t, ok)
	assert.Same(t, second, h, "last registered wins")
	h, ok = reg.Destructible("barrel")
	require.True(t, ok)
	assert.Same(t, first, h)

	_, ok = reg.Destructible("")
	assert.False(t, ok)
	_, ok = reg.Destructible("unknown")
	assert.False(t, ok)
	_, ok = reg.Modifier("crate")
	assert.False(t, ok, "capabilities are separate maps")
	m, ok := reg.Modifier("power")
	require.True(t, ok)
	assert.Same(t, power, m)

	assert.Equal(t, 4, diag.Groups)
	require.Len(t, diag.Duplicates, 1)
	assert.Equal(t, handler.Duplicate{
		Tile: "crate", Capability: handler.CapDestructible, Replaced: "first", Winner: "second",
	}, diag.Duplicates[0])
	assert.Equal(t, 1, diag.EmptyTiles)
	assert.Equal(t, []string{"nothing"}, diag.Inert)
	assert.True(t, reg.Bound("power"))
	assert.False(t, reg.Bound("x"))
}

func TestRegistry_RebuildIsIdempotent(t *testing.T) {
	reg := handler.NewRegistry(zap.NewNop())
	magnet := handler.NewMagnet([]world.TileID{"magnet"}, 0, 0, 3, 0)
	reg.Add(
		handler.Group{Name: "m1", Tiles: []world.TileID{"magnet"}, Handler: magnet},
		handler.Group{Name: "m2", Tiles: []world.TileID{"magnet2"}, Handler: magnet},
	)
	d1 := reg.Rebuild()
	d2 := reg.Rebuild()

	assert.Equal(t, d1, d2)
	assert.Len(t, reg.Starters(), 1, "shared handler started once")
	_, ok := reg.Indestructible("magnet2")
	assert.True(t, ok)
}

func TestBuild(t *testing.T) {
	tbl, err := data.ParseBindings([]byte(`
- name: crates
  handler: breakable
  tiles: [crate]
  params: {prefab: coin}
- name: tnt
  handler: dynamite
  tiles: [tnt]
  params: {delay: 2s}
- name: boiler
  handler: boiler
  tiles: [boiler]
  params: {direction: left}
`))
	require.NoError(t, err)

	groups, err := handler.Build(tbl.Bindings, config.Default().Handlers)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, &handler.Breakable{Prefab: "coin", Volume: 1}, groups[0].Handler)
	d := groups[1].Handler.(*handler.Dynamite)
	assert.Equal(t, config.Default().Handlers.Dynamite.Radius, d.Radius, "config default")
	assert.Equal(t, "2s", d.Delay.String())
	assert.Equal(t, []world.TileID{"tnt"}, groups[1].Tiles)
}

func TestBuild_Errors(t *testing.T) {
	cfg := config.Default().Handlers

	_, err := handler.Build([]data.Binding{{Name: "x", Handler: "teleport"}}, cfg)
	assert.True(t, errors.Is(err, handler.ErrUnknownKind))
	assert.ErrorContains(t, err, `"x"`)

	_, err = handler.Build([]data.Binding{{Name: "p", Handler: "power", Params: data.Params{"boost": "lots"}}}, cfg)
	assert.ErrorContains(t, err, "param boost")

	_, err = handler.Build([]data.Binding{{Name: "s", Handler: "swap", Params: data.Params{"a": "x"}}}, cfg)
	assert.Error(t, err)

	_, err = handler.Build([]data.Binding{{Name: "m", Handler: "magnet", Params: data.Params{"facing": "north"}}}, cfg)
	assert.Error(t, err)
}

func TestKindsAllBuild(t *testing.T) {
	params := map[string]data.Params{
		"script": {"function": "f"},
		"swap":   {"a": "x", "b": "y"},
	}
	for _, kind := range handler.Kinds() {
		_, err := handler.Build([]data.Binding{{Name: kind, Handler: kind, Params: params[kind]}}, config.Default().Handlers)
		assert.NoError(t, err, kind)
	}
}
