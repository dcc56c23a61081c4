package world

import (
	"fmt"
	"sort"

	"github.com/blastgrid/server/internal/grid"
)

// TileID identifies a tile asset. The same asset placed in several cells
// compares equal. The empty TileID means "no tile" and is never stored.
type TileID string

// Layer selects one of the three sparse tile maps.
type Layer uint8

const (
	LayerGround Layer = iota
	LayerDestructible
	LayerIndestructible
)

func (l Layer) String() string {
	switch l {
	case LayerGround:
		return "ground"
	case LayerDestructible:
		return "destructible"
	case LayerIndestructible:
		return "indestructible"
	default:
		return fmt.Sprintf("Layer(%d)", uint8(l))
	}
}

// ParseLayer accepts the names produced by String.
func ParseLayer(s string) (Layer, error) {
	switch s {
	case "ground":
		return LayerGround, nil
	case "destructible":
		return LayerDestructible, nil
	case "indestructible":
		return LayerIndestructible, nil
	}
	return LayerGround, fmt.Errorf("unknown layer %q", s)
}

// TileLayer is a sparse cell → tile map. A cell holds at most one tile.
type TileLayer struct {
	tiles map[grid.Cell]TileID
}

func NewTileLayer() *TileLayer {
	return &TileLayer{tiles: make(map[grid.Cell]TileID)}
}

// Get returns the tile at cell; ok is false for empty cells.
func (l *TileLayer) Get(cell grid.Cell) (TileID, bool) {
	t, ok := l.tiles[cell]
	return t, ok
}

func (l *TileLayer) Has(cell grid.Cell) bool {
	_, ok := l.tiles[cell]
	return ok
}

// Set places tile at cell, replacing whatever was there. Setting the empty
// TileID clears the cell.
func (l *TileLayer) Set(cell grid.Cell, tile TileID) {
	if tile == "" {
		delete(l.tiles, cell)
		return
	}
	l.tiles[cell] = tile
}

// Clear empties cell and returns the tile that was removed.
func (l *TileLayer) Clear(cell grid.Cell) (TileID, bool) {
	t, ok := l.tiles[cell]
	if ok {
		delete(l.tiles, cell)
	}
	return t, ok
}

func (l *TileLayer) Len() int { return len(l.tiles) }

// Cells returns occupied cells in scan order.
func (l *TileLayer) Cells() []grid.Cell {
	cells := make([]grid.Cell, 0, len(l.tiles))
	for c := range l.tiles {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	return cells
}

// CellsWith returns, in scan order, the cells holding any of the given tiles.
func (l *TileLayer) CellsWith(tiles ...TileID) []grid.Cell {
	want := make(map[TileID]struct{}, len(tiles))
	for _, t := range tiles {
		want[t] = struct{}{}
	}
	var out []grid.Cell
	for _, c := range l.Cells() {
		if _, ok := want[l.tiles[c]]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (l *TileLayer) reset() {
	for c := range l.tiles {
		delete(l.tiles, c)
	}
}

// Tilemap groups the ground, destructible and indestructible layers.
type Tilemap struct {
	Ground         *TileLayer
	Destructible   *TileLayer
	Indestructible *TileLayer
}

func NewTilemap() *Tilemap {
	return &Tilemap{
		Ground:         NewTileLayer(),
		Destructible:   NewTileLayer(),
		Indestructible: NewTileLayer(),
	}
}

// Layer returns the layer selected by l.
func (m *Tilemap) Layer(l Layer) *TileLayer {
	switch l {
	case LayerDestructible:
		return m.Destructible
	case LayerIndestructible:
		return m.Indestructible
	default:
		return m.Ground
	}
}

// Blocked reports whether cell holds a destructible or indestructible tile.
func (m *Tilemap) Blocked(cell grid.Cell) bool {
	return m.Destructible.Has(cell) || m.Indestructible.Has(cell)
}

func (m *Tilemap) reset() {
	m.Ground.reset()
	m.Destructible.reset()
	m.Indestructible.reset()
}
