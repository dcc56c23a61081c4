// Package fx is the boundary to whatever renders and plays the simulation.
// Every call is fire-and-forget; the core never waits on a presenter.
package fx

import (
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// Presenter plays visuals and audio for simulation changes.
type Presenter interface {
	PlaySegment(cell grid.Cell, dir grid.Dir, class world.SegmentClass, d time.Duration)
	PlaySfx(clip string, volume float64)
	ShowTile(cell grid.Cell, tile world.TileID, d time.Duration)
	PlayTileMove(from, to grid.Cell, tile world.TileID, d time.Duration)
	SetBlackout(on bool)
	FreezeBomb(id ecs.EntityID, frozen bool)
}

// Nop discards everything.
type Nop struct{}

func (Nop) PlaySegment(grid.Cell, grid.Dir, world.SegmentClass, time.Duration) {}
func (Nop) PlaySfx(string, float64)                                           {}
func (Nop) ShowTile(grid.Cell, world.TileID, time.Duration)                   {}
func (Nop) PlayTileMove(grid.Cell, grid.Cell, world.TileID, time.Duration)    {}
func (Nop) SetBlackout(bool)                                                  {}
func (Nop) FreezeBomb(ecs.EntityID, bool)                                     {}

// LogPresenter writes every call at debug level. Used by the headless
// simulator so a run can be followed in the console.
type LogPresenter struct {
	Log *zap.Logger
}

func NewLogPresenter(log *zap.Logger) *LogPresenter {
	return &LogPresenter{Log: log.Named("fx")}
}

func (p *LogPresenter) PlaySegment(cell grid.Cell, dir grid.Dir, class world.SegmentClass, d time.Duration) {
	p.Log.Debug("segment",
		zap.Stringer("cell", cell),
		zap.Stringer("dir", dir),
		zap.Stringer("class", class),
		zap.Duration("for", d),
	)
}

func (p *LogPresenter) PlaySfx(clip string, volume float64) {
	p.Log.Debug("sfx", zap.String("clip", clip), zap.Float64("volume", volume))
}

func (p *LogPresenter) ShowTile(cell grid.Cell, tile world.TileID, d time.Duration) {
	p.Log.Debug("show tile", zap.Stringer("cell", cell), zap.String("tile", string(tile)), zap.Duration("for", d))
}

func (p *LogPresenter) PlayTileMove(from, to grid.Cell, tile world.TileID, d time.Duration) {
	p.Log.Debug("tile move",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("tile", string(tile)),
		zap.Duration("for", d),
	)
}

func (p *LogPresenter) SetBlackout(on bool) {
	p.Log.Debug("blackout", zap.Bool("on", on))
}

func (p *LogPresenter) FreezeBomb(id ecs.EntityID, frozen bool) {
	p.Log.Debug("freeze bomb", zap.Uint64("bomb", uint64(id)), zap.Bool("frozen", frozen))
}
