package data

import (
	"errors"
	"testing"
	"time"

	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBindings = `
- name: crates
  handler: breakable
  tiles: [crate, barrel]
  params:
    sfx: crack
- name: dynamite
  handler: dynamite
  tiles: [dynamite]
  params:
    radius: 3
    delay: 750ms
`

func TestParseBindings(t *testing.T) {
	tbl, err := ParseBindings([]byte(testBindings))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Count())

	b := tbl.Bindings[1]
	assert.Equal(t, "dynamite", b.Handler)
	r := b.Params.Reader()
	assert.Equal(t, 3, r.Int("radius", 1))
	assert.Equal(t, 750*time.Millisecond, r.Duration("delay", 0))
	assert.Equal(t, "x", r.String("missing", "x"))
	assert.NoError(t, r.Err())
}

func TestParseBindings_MissingHandler(t *testing.T) {
	_, err := ParseBindings([]byte(`- name: x
  tiles: [a]`))
	assert.ErrorContains(t, err, "missing handler")
}

func TestParamReader_TypeErrors(t *testing.T) {
	r := Params{"radius": "big", "on": 1, "delay": "soon", "ms": 250}.Reader()
	assert.Equal(t, 2, r.Int("radius", 2))
	assert.False(t, r.Bool("on", false))
	assert.Equal(t, time.Second, r.Duration("delay", time.Second))
	assert.Equal(t, 250*time.Millisecond, r.Duration("ms", 0))

	err := r.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "param radius")
	assert.Contains(t, err.Error(), "param on")
	assert.Contains(t, err.Error(), "param delay")
}

const testStage = `
name: test
legend:
  ".": [{layer: ground, tile: grass}]
  "#": [{layer: indestructible, tile: wall}]
  "c": [{layer: destructible, tile: crate}]
ground:
  - "...."
  - ".. ."
blocks:
  - "#c"
prefabs:
  slime: enemy
actors:
  - {name: p1, prefab: hero, x: 3, y: 1}
  - {prefab: slime, x: 0, y: 1}
timeline:
  - at: 2s
    bomb: {x: 1, y: 1, radius: 3}
  - at: 0s
    bomb: {x: 0, y: 0, owner: p1, pierce: true}
`

func TestParseStage(t *testing.T) {
	s, err := ParseStage([]byte(testStage))
	require.NoError(t, err)

	assert.Equal(t, "test", s.Name)
	assert.Len(t, s.Tiles, 7+2)
	assert.Equal(t, []world.TileID{"grass"}, s.TileIDs(world.LayerGround))
	assert.Equal(t, []world.TileID{"crate"}, s.TileIDs(world.LayerDestructible))

	require.Len(t, s.Timeline, 2)
	assert.Equal(t, time.Duration(0), s.Timeline[0].At, "sorted by time")
	require.NotNil(t, s.Timeline[0].Bomb.Pierce)
	assert.True(t, *s.Timeline[0].Bomb.Pierce)
	assert.Nil(t, s.Timeline[1].Bomb.Pierce)
}

func TestParseStage_UnknownLegendNamesPosition(t *testing.T) {
	_, err := ParseStage([]byte(`
legend:
  ".": [{layer: ground, tile: grass}]
ground:
  - "..."
  - ".?."
`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLegend))
	assert.Contains(t, err.Error(), "row 2 col 2")
}

func TestParseStage_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad layer":     "legend:\n  x: [{layer: sky, tile: a}]\n",
		"long key":      "legend:\n  xy: [{layer: ground, tile: a}]\n",
		"unknown owner": "timeline:\n  - at: 1s\n    bomb: {x: 0, y: 0, owner: ghost}\n",
		"empty action":  "timeline:\n  - at: 1s\n",
		"bad kind":      "prefabs:\n  slime: monster\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStage([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestStage_Apply(t *testing.T) {
	s, err := ParseStage([]byte(testStage))
	require.NoError(t, err)
	w := world.NewState(grid.Converter{CellSize: 1})
	w.Tiles.Ground.Set(grid.Cell{X: 99, Y: 99}, "stale")

	named := s.Apply(w)

	assert.False(t, w.Tiles.Ground.Has(grid.Cell{X: 99, Y: 99}), "apply starts from a clean stage")
	assert.Equal(t, 7, w.Tiles.Ground.Len())
	tile, ok := w.Tiles.Indestructible.Get(grid.Cell{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, world.TileID("wall"), tile)
	assert.True(t, w.IsCellOccupied(grid.Cell{X: 0, Y: 1}, world.MaskEnemy))

	require.Contains(t, named, "p1")
	a, ok := w.Actor(named["p1"])
	require.True(t, ok)
	assert.Equal(t, grid.Cell{X: 3, Y: 1}, a.Cell())
}
