package event

import (
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/world"
	"github.com/google/uuid"
)

// Cause names what set a bomb off.
type Cause string

const (
	CauseFuse   Cause = "fuse"
	CauseChain  Cause = "chain"
	CauseForced Cause = "forced"
	CauseAPI    Cause = "api"
)

// Detonated is emitted once per bomb, after its cross has been fully walked.
// Bombs set off by the same root share BlastID; Depth is 0 for the root.
type Detonated struct {
	BlastID  uuid.UUID
	Depth    int
	BombID   ecs.EntityID
	Owner    ecs.EntityID
	Cell     grid.Cell
	Radius   int
	Pierce   bool
	Cause    Cause
	Segments int
	At       time.Duration
}

type SegmentPlaced struct {
	Cell   grid.Cell
	Dir    grid.Dir
	Class  world.SegmentClass
	Origin ecs.EntityID
}

// TileDestroyed is emitted by the default destructible reaction.
type TileDestroyed struct {
	Cell  grid.Cell
	Layer world.Layer
	Tile  world.TileID
}

type TaskAbandoned struct {
	Task   string
	Reason string
}

type PuzzleSolved struct {
	Group string
}

type BlackoutToggled struct {
	On bool
}
