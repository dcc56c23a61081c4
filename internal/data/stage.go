package data

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
	"gopkg.in/yaml.v3"
)

// ErrUnknownLegend is returned when a stage row uses a character the legend
// does not define.
var ErrUnknownLegend = errors.New("unknown legend character")

// LegendEntry places one tile on one layer.
type LegendEntry struct {
	Layer string `yaml:"layer"`
	Tile  string `yaml:"tile"`
}

// ActorEntry is a dynamic entity present when the stage starts.
type ActorEntry struct {
	Name   string `yaml:"name"`
	Prefab string `yaml:"prefab"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
}

// BombEntry describes a bomb drop. Zero radius and fuse fall back to the
// configured defaults; a nil Pierce does too.
type BombEntry struct {
	X      int           `yaml:"x"`
	Y      int           `yaml:"y"`
	Radius int           `yaml:"radius"`
	Pierce *bool         `yaml:"pierce"`
	Fuse   time.Duration `yaml:"fuse"`
	Owner  string        `yaml:"owner"`
}

func (b BombEntry) Cell() grid.Cell { return grid.Cell{X: b.X, Y: b.Y} }

// TimelineEntry fires at a simulated time offset from stage start.
type TimelineEntry struct {
	At   time.Duration `yaml:"at"`
	Bomb *BombEntry    `yaml:"bomb"`
}

type stageFile struct {
	Name     string                   `yaml:"name"`
	Legend   map[string][]LegendEntry `yaml:"legend"`
	Ground   []string                 `yaml:"ground"`
	Blocks   []string                 `yaml:"blocks"`
	Prefabs  map[string]string        `yaml:"prefabs"` // prefab → kind
	Actors   []ActorEntry             `yaml:"actors"`
	Timeline []TimelineEntry          `yaml:"timeline"`
}

// PlacedTile is one resolved tile of a stage layout.
type PlacedTile struct {
	Cell  grid.Cell
	Layer world.Layer
	Tile  world.TileID
}

// Stage is a parsed, validated stage layout.
type Stage struct {
	Name     string
	Tiles    []PlacedTile
	Prefabs  map[string]world.Mask
	Actors   []ActorEntry
	Timeline []TimelineEntry // sorted by At, stable
}

// LoadStage loads a stage YAML file.
func LoadStage(path string) (*Stage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage: %w", err)
	}
	s, err := ParseStage(raw)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", path, err)
	}
	return s, nil
}

func ParseStage(raw []byte) (*Stage, error) {
	var f stageFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse stage: %w", err)
	}

	legend := make(map[rune][]PlacedTile, len(f.Legend))
	for key, entries := range f.Legend {
		if utf8.RuneCountInString(key) != 1 {
			return nil, fmt.Errorf("legend key %q: must be a single character", key)
		}
		r, _ := utf8.DecodeRuneInString(key)
		for _, e := range entries {
			layer, err := world.ParseLayer(e.Layer)
			if err != nil {
				return nil, fmt.Errorf("legend %q: %w", key, err)
			}
			if e.Tile == "" {
				return nil, fmt.Errorf("legend %q: empty tile", key)
			}
			legend[r] = append(legend[r], PlacedTile{Layer: layer, Tile: world.TileID(e.Tile)})
		}
	}

	s := &Stage{
		Name:    f.Name,
		Prefabs: make(map[string]world.Mask, len(f.Prefabs)),
		Actors:  f.Actors,
	}
	for _, grp := range []struct {
		name string
		rows []string
	}{{"ground", f.Ground}, {"blocks", f.Blocks}} {
		for y, row := range grp.rows {
			x := 0
			for _, ch := range row {
				if ch != ' ' {
					entries, ok := legend[ch]
					if !ok {
						return nil, fmt.Errorf("%s row %d col %d: %w %q", grp.name, y+1, x+1, ErrUnknownLegend, ch)
					}
					for _, e := range entries {
						e.Cell = grid.Cell{X: x, Y: y}
						s.Tiles = append(s.Tiles, e)
					}
				}
				x++
			}
		}
	}

	for prefab, kind := range f.Prefabs {
		m, err := ParseMask(kind)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", prefab, err)
		}
		s.Prefabs[prefab] = m
	}

	names := make(map[string]bool, len(f.Actors))
	for i, a := range f.Actors {
		if a.Prefab == "" {
			return nil, fmt.Errorf("actor #%d: missing prefab", i+1)
		}
		if a.Name != "" {
			if names[a.Name] {
				return nil, fmt.Errorf("actor %q: duplicate name", a.Name)
			}
			names[a.Name] = true
		}
	}

	for i, e := range f.Timeline {
		if e.Bomb == nil {
			return nil, fmt.Errorf("timeline #%d: no action", i+1)
		}
		if e.At < 0 {
			return nil, fmt.Errorf("timeline #%d: negative time", i+1)
		}
		if e.Bomb.Owner != "" && !names[e.Bomb.Owner] {
			return nil, fmt.Errorf("timeline #%d: unknown owner %q", i+1, e.Bomb.Owner)
		}
	}
	s.Timeline = append(s.Timeline, f.Timeline...)
	sort.SliceStable(s.Timeline, func(i, j int) bool { return s.Timeline[i].At < s.Timeline[j].At })
	return s, nil
}

// ParseMask maps an actor kind name to its occupancy bit.
func ParseMask(kind string) (world.Mask, error) {
	switch kind {
	case "player":
		return world.MaskPlayer, nil
	case "enemy":
		return world.MaskEnemy, nil
	case "item":
		return world.MaskItem, nil
	case "prop":
		return world.MaskProp, nil
	default:
		return 0, fmt.Errorf("unknown actor kind %q", kind)
	}
}

// TileIDs returns the distinct tiles the stage uses on layer, sorted.
func (s *Stage) TileIDs(layer world.Layer) []world.TileID {
	seen := make(map[world.TileID]bool)
	var out []world.TileID
	for _, t := range s.Tiles {
		if t.Layer == layer && !seen[t.Tile] {
			seen[t.Tile] = true
			out = append(out, t.Tile)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Apply resets w and populates it with the stage's tiles, prefab kinds and
// actors. It returns the IDs of named actors.
func (s *Stage) Apply(w *world.State) map[string]ecs.EntityID {
	w.ResetStage()
	for prefab, kind := range s.Prefabs {
		w.RegisterPrefab(prefab, kind)
	}
	for _, t := range s.Tiles {
		w.Tiles.Layer(t.Layer).Set(t.Cell, t.Tile)
	}
	named := make(map[string]ecs.EntityID)
	for _, a := range s.Actors {
		id := w.SpawnAt(a.Prefab, w.Conv.Center(grid.Cell{X: a.X, Y: a.Y}))
		if a.Name != "" {
			named[a.Name] = id
		}
	}
	return named
}
