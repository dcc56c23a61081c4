package grid

import (
	"fmt"
	"math"
)

// Cell is an integer grid coordinate. Cells compare by value and are used
// directly as map keys by every layer and registry.
type Cell struct {
	X, Y int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Add returns c offset by o.
func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Y: c.Y + o.Y} }

// Step returns the cell n steps away from c in direction d.
func (c Cell) Step(d Dir, n int) Cell {
	delta := d.Delta()
	return Cell{X: c.X + delta.X*n, Y: c.Y + delta.Y*n}
}

// Manhattan returns the taxicab distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Less orders cells in scan order: row by row (y), then column (x).
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Dir is one of the four cardinal directions.
type Dir uint8

const (
	Up Dir = iota
	Down
	Left
	Right
)

// Dirs lists the cardinal directions in propagation order.
var Dirs = [4]Dir{Up, Down, Left, Right}

func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Dir(%d)", uint8(d))
	}
}

// Delta returns the unit offset of d. Y grows downward.
func (d Dir) Delta() Cell {
	switch d {
	case Up:
		return Cell{Y: -1}
	case Down:
		return Cell{Y: 1}
	case Left:
		return Cell{X: -1}
	case Right:
		return Cell{X: 1}
	}
	return Cell{}
}

func (d Dir) Opposite() Dir {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Clockwise rotates d a quarter turn: up → right → down → left → up.
func (d Dir) Clockwise() Dir {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	default:
		return Up
	}
}

// ParseDir accepts the lower-case names produced by String.
func ParseDir(s string) (Dir, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// DirBetween returns the dominant-axis direction pointing from one cell to
// another. Ties favour the horizontal axis. ok is false when from == to.
func DirBetween(from, to Cell) (Dir, bool) {
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx == 0 && dy == 0 {
		return Up, false
	}
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			return Right, true
		}
		return Left, true
	}
	if dy > 0 {
		return Down, true
	}
	return Up, true
}

// Pos is a continuous world position.
type Pos struct {
	X, Y float64
}

func (p Pos) Add(o Pos) Pos { return Pos{X: p.X + o.X, Y: p.Y + o.Y} }

// Lerp interpolates between p and o; t is clamped to [0,1].
func (p Pos) Lerp(o Pos, t float64) Pos {
	t = math.Max(0, math.Min(1, t))
	return Pos{X: p.X + (o.X-p.X)*t, Y: p.Y + (o.Y-p.Y)*t}
}

// Converter maps world positions to cells and back. Cells are CellSize
// wide squares whose top-left corner of cell (0,0) sits at Origin.
type Converter struct {
	CellSize float64
	Origin   Pos
}

func (c Converter) size() float64 {
	if c.CellSize <= 0 {
		return 1
	}
	return c.CellSize
}

// CellOf resolves the cell containing p. Floor division keeps negative
// coordinates on the correct side of zero.
func (c Converter) CellOf(p Pos) Cell {
	s := c.size()
	return Cell{
		X: int(math.Floor((p.X - c.Origin.X) / s)),
		Y: int(math.Floor((p.Y - c.Origin.Y) / s)),
	}
}

// Center returns the world position of the middle of cell.
func (c Converter) Center(cell Cell) Pos {
	s := c.size()
	return Pos{
		X: c.Origin.X + (float64(cell.X)+0.5)*s,
		Y: c.Origin.Y + (float64(cell.Y)+0.5)*s,
	}
}

// CellsIn returns every cell overlapped by the axis-aligned rectangle of the
// given size centred on center, in scan order. Edges that merely touch a
// neighbouring cell do not count as overlap.
func (c Converter) CellsIn(center, size Pos) []Cell {
	const eps = 1e-9
	halfW, halfH := math.Abs(size.X)/2, math.Abs(size.Y)/2
	minCell := c.CellOf(Pos{X: center.X - halfW + eps, Y: center.Y - halfH + eps})
	maxCell := c.CellOf(Pos{X: center.X + halfW - eps, Y: center.Y + halfH - eps})
	if maxCell.X < minCell.X {
		maxCell.X = minCell.X
	}
	if maxCell.Y < minCell.Y {
		maxCell.Y = minCell.Y
	}
	cells := make([]Cell, 0, (maxCell.X-minCell.X+1)*(maxCell.Y-minCell.Y+1))
	for y := minCell.Y; y <= maxCell.Y; y++ {
		for x := minCell.X; x <= maxCell.X; x++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
