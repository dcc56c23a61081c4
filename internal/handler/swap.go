package handler

import (
	"github.com/blastgrid/server/internal/core/event"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

// Swap flips a ground tile between A and B every time fire passes over it.
//
// With Blackout set each flip also toggles the stage blackout. With Puzzle
// set it is one-way instead: A turns into B and B stays B, and once every A
// cell present at stage start has been burnt the puzzle completes exactly once.
type Swap struct {
	Group    string
	A, B     world.TileID
	Blackout bool
	Puzzle   bool
	Sfx      string
	Reward   string // prefab spawned on the last flipped cell

	remaining int
	solved    bool
}

func (s *Swap) Start(env *Env) {
	s.solved = false
	s.remaining = len(env.World.Tiles.Ground.CellsWith(s.A))
}

// Remaining reports how many A tiles are left in puzzle mode.
func (s *Swap) Remaining() int { return s.remaining }

func (s *Swap) OnExplosionPass(env *Env, h Hit) {
	ground := env.World.Tiles.Ground
	if s.Puzzle {
		if h.Tile != s.A || s.solved {
			return
		}
		ground.Set(h.Cell, s.B)
		env.Presenter.ShowTile(h.Cell, s.B, 0)
		s.remaining--
		if s.remaining <= 0 {
			s.complete(env, h)
		}
		return
	}

	next := s.A
	if h.Tile == s.A {
		next = s.B
	}
	ground.Set(h.Cell, next)
	env.Presenter.ShowTile(h.Cell, next, 0)

	if s.Blackout {
		on := !env.World.Flags.Blackout
		env.World.Flags.Blackout = on
		env.Presenter.SetBlackout(on)
		event.Emit(env.Bus, event.BlackoutToggled{On: on})
	}
}

func (s *Swap) complete(env *Env, h Hit) {
	s.solved = true
	if s.Sfx != "" {
		env.Presenter.PlaySfx(s.Sfx, 1)
	}
	if s.Reward != "" {
		env.World.SpawnAt(s.Reward, h.Pos)
	}
	env.Log.Info("puzzle solved", zap.String("group", s.Group))
	event.Emit(env.Bus, event.PuzzleSolved{Group: s.Group})
}
