package fx

import (
	"testing"
	"time"

	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var (
	_ Presenter = Nop{}
	_ Presenter = (*LogPresenter)(nil)
	_ Presenter = (*Recorder)(nil)
)

func TestRecorder_KeepsOrder(t *testing.T) {
	r := &Recorder{}
	r.PlaySegment(grid.Cell{X: 1}, grid.Right, world.SegmentEnd, time.Second)
	r.PlaySfx("break", 1)
	r.PlayTileMove(grid.Cell{}, grid.Cell{Y: 1}, "stone", time.Second)
	r.SetBlackout(true)

	assert.Equal(t, []string{
		"segment (1,0) right end",
		"sfx break",
		"move (0,0)->(0,1) stone",
		"blackout true",
	}, r.Strings())
	assert.Len(t, r.Of("sfx"), 1)

	r.Reset()
	assert.Empty(t, r.Calls)
}

func TestLogPresenter_DoesNotPanic(t *testing.T) {
	p := NewLogPresenter(zap.NewNop())
	assert.NotPanics(t, func() {
		p.PlaySegment(grid.Cell{}, grid.Up, world.SegmentStart, time.Second)
		p.ShowTile(grid.Cell{}, "warn", time.Second)
		p.FreezeBomb(1, true)
	})
}
