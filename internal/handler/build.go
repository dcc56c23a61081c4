package handler

import (
	"errors"
	"fmt"

	"github.com/blastgrid/server/internal/config"
	"github.com/blastgrid/server/internal/data"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
)

// ErrUnknownKind is returned by Build for a binding whose handler kind has
// no constructor.
var ErrUnknownKind = errors.New("unknown handler kind")

type constructor func(b data.Binding, p *data.ParamReader, cfg config.HandlersConfig) (any, error)

var constructors = map[string]constructor{
	"breakable": func(_ data.Binding, p *data.ParamReader, _ config.HandlersConfig) (any, error) {
		return &Breakable{
			Prefab: p.String("prefab", ""),
			Sfx:    p.String("sfx", ""),
			Volume: p.Float("volume", 1),
		}, nil
	},
	"dynamite": func(_ data.Binding, p *data.ParamReader, cfg config.HandlersConfig) (any, error) {
		return NewDynamite(
			p.Int("radius", cfg.Dynamite.Radius),
			p.Duration("delay", cfg.Dynamite.Delay),
		), nil
	},
	"power": func(_ data.Binding, p *data.ParamReader, cfg config.HandlersConfig) (any, error) {
		return &Power{Boost: p.Int("boost", cfg.Power.Boost)}, nil
	},
	"pierce": func(data.Binding, *data.ParamReader, config.HandlersConfig) (any, error) {
		return &Pierce{}, nil
	},
	"script": func(b data.Binding, p *data.ParamReader, _ config.HandlersConfig) (any, error) {
		fn := p.String("function", "")
		if fn == "" {
			return nil, fmt.Errorf("script handler needs a function param")
		}
		return &Script{Function: fn}, nil
	},
	"swap": func(b data.Binding, p *data.ParamReader, _ config.HandlersConfig) (any, error) {
		s := &Swap{
			Group:    b.Name,
			A:        world.TileID(p.String("a", "")),
			B:        world.TileID(p.String("b", "")),
			Blackout: p.Bool("blackout", false),
			Puzzle:   p.Bool("puzzle", false),
			Sfx:      p.String("sfx", ""),
			Reward:   p.String("reward", ""),
		}
		if s.A == "" || s.B == "" {
			return nil, fmt.Errorf("swap handler needs a and b params")
		}
		return s, nil
	},
	"resurrect": func(_ data.Binding, p *data.ParamReader, cfg config.HandlersConfig) (any, error) {
		c := cfg.Resurrect
		return &Resurrect{
			Delay:       p.Duration("delay", c.Delay),
			Poll:        p.Duration("poll", c.Poll),
			Warning:     p.Duration("warning", c.Warning),
			Animation:   p.Duration("animation", c.Animation),
			WarningTile: world.TileID(p.String("warning_tile", "")),
			RespawnTile: world.TileID(p.String("respawn_tile", "")),
		}, nil
	},
	"push": func(_ data.Binding, p *data.ParamReader, cfg config.HandlersConfig) (any, error) {
		return &Push{Duration: p.Duration("duration", cfg.Push.Duration)}, nil
	},
	"magnet": func(b data.Binding, p *data.ParamReader, cfg config.HandlersConfig) (any, error) {
		facing, err := grid.ParseDir(p.String("facing", "up"))
		if err != nil {
			return nil, err
		}
		return NewMagnet(tileIDs(b.Tiles), facing,
			p.Duration("interval", cfg.Magnet.Interval),
			p.Int("range", cfg.Magnet.Range),
			p.Duration("step", cfg.Magnet.Step),
		), nil
	},
	"boiler": func(_ data.Binding, p *data.ParamReader, cfg config.HandlersConfig) (any, error) {
		dir, err := grid.ParseDir(p.String("direction", "right"))
		if err != nil {
			return nil, err
		}
		return NewBoiler(dir,
			p.Duration("delay", cfg.Boiler.Delay),
			p.Duration("duration", cfg.Boiler.Duration),
			p.Int("steps", cfg.Boiler.Steps),
		), nil
	},
}

// Kinds returns the handler kinds Build understands.
func Kinds() []string {
	return []string{"breakable", "boiler", "dynamite", "magnet", "pierce", "power", "push", "resurrect", "script", "swap"}
}

// Build turns data bindings into registry groups, filling timings the
// binding does not set from cfg.
func Build(bindings []data.Binding, cfg config.HandlersConfig) ([]Group, error) {
	groups := make([]Group, 0, len(bindings))
	for _, b := range bindings {
		ctor, ok := constructors[b.Handler]
		if !ok {
			return nil, fmt.Errorf("binding %q: %w %q", b.Name, ErrUnknownKind, b.Handler)
		}
		p := b.Params.Reader()
		h, err := ctor(b, p, cfg)
		if err == nil {
			err = p.Err()
		}
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Name, err)
		}
		groups = append(groups, Group{Name: b.Name, Tiles: tileIDs(b.Tiles), Handler: h})
	}
	return groups, nil
}

func tileIDs(tiles []string) []world.TileID {
	out := make([]world.TileID, len(tiles))
	for i, t := range tiles {
		out[i] = world.TileID(t)
	}
	return out
}
