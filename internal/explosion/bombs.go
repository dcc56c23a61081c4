package explosion

import (
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// PlaceBomb registers a new bomb, filling unset fields from the configured
// defaults, and tells the ground handler under it once.
func (p *Propagator) PlaceBomb(spec world.BombSpec) *world.Bomb {
	d := p.opts.Bomb
	if spec.Fuse <= 0 {
		spec.Fuse = d.Fuse
	}
	if spec.Radius <= 0 {
		spec.Radius = d.Radius
	}
	spec.Pierce = spec.Pierce || d.Pierce

	w := p.env.World
	b := w.Bombs.Add(spec)
	p.notified[b.ID] = b.Cell()
	p.env.Metrics.SetLiveBombs(w.Bombs.Len())
	p.env.Log.Debug("bomb placed",
		zap.Uint64("bomb", uint64(b.ID)),
		zap.Stringer("cell", b.Cell()),
		zap.Int("radius", b.Radius),
		zap.Duration("fuse", b.Fuse),
	)

	if tile, ok := w.Tiles.Ground.Get(b.Cell()); ok {
		if h, ok := p.reg.Placed(tile); ok {
			hit := p.hit(b, b.Cell(), b.Cell(), tile, b.Pierce)
			p.env.Metrics.HandlerCall(handler.CapPlaced)
			handler.Safe(p.env.Log, handler.CapPlaced, tile, func() {
				h.OnBombPlaced(p.env, hit, b)
			})
		}
	}
	return b
}

// NotifyBombAt tells the ground handler under b that the bomb is resting
// there. It fires only for idle, live bombs whose cell differs from the last
// one notified, so calling it every tick is cheap and idempotent.
func (p *Propagator) NotifyBombAt(b *world.Bomb) {
	if b == nil || !b.Armed() {
		return
	}
	cell := b.Cell()
	if last, ok := p.notified[b.ID]; ok && last == cell {
		return
	}
	p.notified[b.ID] = cell

	tile, ok := p.env.World.Tiles.Ground.Get(cell)
	if !ok {
		return
	}
	h, ok := p.reg.At(tile)
	if !ok {
		return
	}
	hit := p.hit(b, cell, cell, tile, b.Pierce)
	p.env.Metrics.HandlerCall(handler.CapAt)
	handler.Safe(p.env.Log, handler.CapAt, tile, func() {
		h.OnBombAt(p.env, hit, b)
	})
}
