package world

import (
	"testing"
	"time"

	"github.com/blastgrid/server/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState() *State {
	return NewState(grid.Converter{CellSize: 1})
}

func at(x, y int) grid.Pos { return grid.Converter{CellSize: 1}.Center(grid.Cell{X: x, Y: y}) }

func TestTileLayer_SetGetClear(t *testing.T) {
	l := NewTileLayer()
	c := grid.Cell{X: 1, Y: 2}

	_, ok := l.Get(c)
	assert.False(t, ok)

	l.Set(c, "crate")
	l.Set(c, "barrel") // one tile per cell: replaces
	tile, ok := l.Get(c)
	require.True(t, ok)
	assert.Equal(t, TileID("barrel"), tile)
	assert.Equal(t, 1, l.Len())

	prev, ok := l.Clear(c)
	assert.True(t, ok)
	assert.Equal(t, TileID("barrel"), prev)
	assert.False(t, l.Has(c))

	l.Set(c, "x")
	l.Set(c, "")
	assert.False(t, l.Has(c), "setting the empty tile clears the cell")
}

func TestTileLayer_CellsScanOrder(t *testing.T) {
	l := NewTileLayer()
	l.Set(grid.Cell{X: 2, Y: 1}, "a")
	l.Set(grid.Cell{X: 0, Y: 2}, "b")
	l.Set(grid.Cell{X: 1, Y: 1}, "a")

	assert.Equal(t, []grid.Cell{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 0, Y: 2}}, l.Cells())
	assert.Equal(t, []grid.Cell{{X: 1, Y: 1}, {X: 2, Y: 1}}, l.CellsWith("a"))
}

func TestParseLayer(t *testing.T) {
	for _, l := range []Layer{LayerGround, LayerDestructible, LayerIndestructible} {
		got, err := ParseLayer(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLayer("sky")
	assert.Error(t, err)
}

func TestBombs_AddMoveRemove(t *testing.T) {
	s := newTestState()
	b := s.Bombs.Add(BombSpec{Pos: at(3, 3), Radius: 2, Fuse: time.Second})

	got, ok := s.Bombs.At(grid.Cell{X: 3, Y: 3})
	require.True(t, ok)
	assert.Same(t, b, got)

	changed := s.Bombs.Move(b, grid.Pos{X: 3.9, Y: 3.2})
	assert.False(t, changed, "same cell, no re-index")

	changed = s.Bombs.Move(b, at(4, 3))
	assert.True(t, changed)
	assert.Equal(t, grid.Cell{X: 4, Y: 3}, b.Cell())
	_, ok = s.Bombs.At(grid.Cell{X: 3, Y: 3})
	assert.False(t, ok)
	_, ok = s.Bombs.At(grid.Cell{X: 4, Y: 3})
	assert.True(t, ok)

	s.Bombs.Remove(b)
	assert.Equal(t, 0, s.Bombs.Len())
	assert.False(t, s.Bombs.Contains(b))
	assert.False(t, s.Bombs.Move(b, at(0, 0)), "moving a removed bomb is rejected")
	s.Bombs.Remove(b) // no-op
}

func TestBomb_MarkExplodedOnce(t *testing.T) {
	s := newTestState()
	b := s.Bombs.Add(BombSpec{Pos: at(0, 0), Radius: 1})

	assert.True(t, b.Armed())
	assert.True(t, b.MarkExploded())
	assert.False(t, b.MarkExploded())
	assert.True(t, b.HasExploded())
	assert.False(t, b.Armed())

	_, ok := s.Bombs.At(grid.Cell{})
	assert.False(t, ok, "exploded bombs are not chain targets")
}

func TestBombs_ListScanOrder(t *testing.T) {
	s := newTestState()
	b1 := s.Bombs.Add(BombSpec{Pos: at(5, 1)})
	b2 := s.Bombs.Add(BombSpec{Pos: at(1, 2)})
	b3 := s.Bombs.Add(BombSpec{Pos: at(0, 1)})

	assert.Equal(t, []*Bomb{b3, b1, b2}, s.Bombs.List())
}

func TestBomb_MoveStateGatesArmed(t *testing.T) {
	s := newTestState()
	b := s.Bombs.Add(BombSpec{Pos: at(0, 0)})
	b.SetMoveState(MoveKicked)
	assert.False(t, b.Armed())
	assert.Equal(t, "kicked", b.MoveState().String())
	b.SetMoveState(MoveIdle)
	assert.True(t, b.Armed())
}

func TestSegments_PlaceNeverDuplicates(t *testing.T) {
	s := newTestState()
	c := grid.Cell{X: 1, Y: 0}

	seg, created := s.Segments.Place(c, grid.Right, SegmentEnd, time.Second, 0)
	require.True(t, created)

	again, created := s.Segments.Place(c, grid.Right, SegmentMiddle, 2*time.Second, 0)
	assert.False(t, created)
	assert.Same(t, seg, again)
	assert.Equal(t, SegmentMiddle, seg.Class, "end upgraded to middle")
	assert.Equal(t, 2*time.Second, seg.Remaining)

	s.Segments.Place(c, grid.Right, SegmentEnd, time.Second, 0)
	assert.Equal(t, SegmentMiddle, seg.Class, "never demoted")
	assert.Equal(t, 1, s.Segments.Len())
}

func TestSegments_UpgradeAndTick(t *testing.T) {
	s := newTestState()
	a := grid.Cell{X: 0, Y: 0}
	b := grid.Cell{X: 0, Y: 1}
	s.Segments.Place(a, grid.Up, SegmentEnd, 100*time.Millisecond, 0)
	s.Segments.Place(b, grid.Up, SegmentStart, 300*time.Millisecond, 0)

	assert.True(t, s.Segments.Upgrade(a))
	assert.False(t, s.Segments.Upgrade(a), "already middle")
	assert.False(t, s.Segments.Upgrade(b), "start is not an end")

	expired := s.Segments.Tick(200 * time.Millisecond)
	require.Len(t, expired, 1)
	assert.Equal(t, a, expired[0].Cell)
	assert.Equal(t, 1, s.Segments.Len())
}

func TestState_Occupancy(t *testing.T) {
	s := newTestState()
	s.RegisterPrefab("slime", MaskEnemy)

	enemy := s.SpawnAt("slime", at(2, 2))
	coin := s.SpawnAt("coin", at(3, 2))

	assert.True(t, s.IsCellOccupied(grid.Cell{X: 2, Y: 2}, MaskBlocking))
	assert.False(t, s.IsCellOccupied(grid.Cell{X: 3, Y: 2}, MaskBlocking), "items do not block")
	assert.True(t, s.IsCellOccupied(grid.Cell{X: 3, Y: 2}, MaskItem))

	a, ok := s.TryFindDynamicEntityAt(grid.Cell{X: 2, Y: 2})
	require.True(t, ok)
	assert.Equal(t, enemy, a.ID)

	// area straddling (2,2) and (3,2)
	assert.True(t, s.IsAreaOccupied(grid.Pos{X: 3, Y: 2.5}, grid.Pos{X: 1, Y: 0.5}, MaskEnemy))
	assert.False(t, s.IsAreaOccupied(at(5, 5), grid.Pos{X: 1, Y: 1}, MaskAll))

	require.True(t, s.MoveActor(enemy, at(5, 5)))
	assert.True(t, s.IsAreaOccupied(at(5, 5), grid.Pos{X: 1, Y: 1}, MaskEnemy))
	assert.False(t, s.IsCellOccupied(grid.Cell{X: 2, Y: 2}, MaskAll))

	s.RemoveActor(coin)
	_, ok = s.TryFindDynamicEntityAt(grid.Cell{X: 3, Y: 2})
	assert.False(t, ok)
}

func TestState_BombsCountAsOccupantsOnlyWithMask(t *testing.T) {
	s := newTestState()
	s.Bombs.Add(BombSpec{Pos: at(1, 1)})

	assert.True(t, s.IsCellOccupied(grid.Cell{X: 1, Y: 1}, MaskBomb))
	assert.False(t, s.IsCellOccupied(grid.Cell{X: 1, Y: 1}, MaskPlayer))
	b, ok := s.TryFindBombAt(grid.Cell{X: 1, Y: 1})
	require.True(t, ok)
	assert.Equal(t, grid.Cell{X: 1, Y: 1}, b.Cell())
}

func TestState_ResetStage(t *testing.T) {
	s := newTestState()
	s.Tiles.Ground.Set(grid.Cell{}, "grass")
	s.Bombs.Add(BombSpec{Pos: at(0, 0)})
	s.Segments.Place(grid.Cell{}, grid.Up, SegmentStart, time.Second, 0)
	s.AddActor(MaskPlayer, "hero", at(1, 1))
	s.Flags.Blackout = true

	s.ResetStage()

	assert.Equal(t, 0, s.Tiles.Ground.Len())
	assert.Equal(t, 0, s.Bombs.Len())
	assert.Equal(t, 0, s.Segments.Len())
	assert.Empty(t, s.Actors())
	assert.False(t, s.Flags.Blackout)
	assert.Equal(t, 0, s.Pool().Live())
}
