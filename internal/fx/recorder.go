package fx

import (
	"fmt"
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
)

// Call is one recorded presenter invocation.
type Call struct {
	Kind   string // "segment", "sfx", "tile", "move", "blackout", "freeze"
	Cell   grid.Cell
	To     grid.Cell
	Dir    grid.Dir
	Class  world.SegmentClass
	Tile   world.TileID
	Clip   string
	Volume float64
	Dur    time.Duration
	Bomb   ecs.EntityID
	On     bool
}

func (c Call) String() string {
	switch c.Kind {
	case "segment":
		return fmt.Sprintf("segment %s %s %s", c.Cell, c.Dir, c.Class)
	case "sfx":
		return "sfx " + c.Clip
	case "tile":
		return fmt.Sprintf("tile %s %s", c.Cell, c.Tile)
	case "move":
		return fmt.Sprintf("move %s->%s %s", c.Cell, c.To, c.Tile)
	case "blackout":
		return fmt.Sprintf("blackout %t", c.On)
	case "freeze":
		return fmt.Sprintf("freeze %d %t", c.Bomb, c.On)
	default:
		return c.Kind
	}
}

// Recorder keeps every call in order. Meant for tests.
type Recorder struct {
	Calls []Call
}

func (r *Recorder) PlaySegment(cell grid.Cell, dir grid.Dir, class world.SegmentClass, d time.Duration) {
	r.Calls = append(r.Calls, Call{Kind: "segment", Cell: cell, Dir: dir, Class: class, Dur: d})
}

func (r *Recorder) PlaySfx(clip string, volume float64) {
	r.Calls = append(r.Calls, Call{Kind: "sfx", Clip: clip, Volume: volume})
}

func (r *Recorder) ShowTile(cell grid.Cell, tile world.TileID, d time.Duration) {
	r.Calls = append(r.Calls, Call{Kind: "tile", Cell: cell, Tile: tile, Dur: d})
}

func (r *Recorder) PlayTileMove(from, to grid.Cell, tile world.TileID, d time.Duration) {
	r.Calls = append(r.Calls, Call{Kind: "move", Cell: from, To: to, Tile: tile, Dur: d})
}

func (r *Recorder) SetBlackout(on bool) {
	r.Calls = append(r.Calls, Call{Kind: "blackout", On: on})
}

func (r *Recorder) FreezeBomb(id ecs.EntityID, frozen bool) {
	r.Calls = append(r.Calls, Call{Kind: "freeze", Bomb: id, On: frozen})
}

// Of returns the recorded calls of one kind.
func (r *Recorder) Of(kind string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Strings renders every call, handy for assert.Equal.
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.String()
	}
	return out
}

func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }
