package handler

import "github.com/blastgrid/server/internal/scripting"

// Power raises the radius of bombs going off on its ground to at least Boost.
type Power struct {
	Boost int
}

func (p *Power) TryModifyExplosion(_ *Env, _ Hit, radius *int, _ *bool) bool {
	if *radius < p.Boost {
		*radius = p.Boost
	}
	return true
}

// Pierce makes bombs going off on its ground burn through destructibles.
type Pierce struct{}

func (Pierce) TryModifyExplosion(_ *Env, _ Hit, _ *int, pierce *bool) bool {
	*pierce = true
	return true
}

// Script delegates the modification to a Lua function.
type Script struct {
	Function string
}

func (s *Script) TryModifyExplosion(env *Env, h Hit, radius *int, pierce *bool) bool {
	if env.Scripts == nil {
		return false
	}
	ctx := scripting.ExplosionContext{
		X:      h.Cell.X,
		Y:      h.Cell.Y,
		Tile:   string(h.Tile),
		Radius: *radius,
		Pierce: *pierce,
	}
	if h.Bomb != nil {
		ctx.Bomb = uint64(h.Bomb.ID)
		ctx.Owner = uint64(h.Bomb.Owner)
	}
	res, ok := env.Scripts.ModifyExplosion(s.Function, ctx)
	if !ok {
		return false
	}
	*radius, *pierce = res.Radius, res.Pierce
	return true
}
