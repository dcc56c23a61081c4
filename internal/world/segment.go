package world

import (
	"fmt"
	"time"

	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/grid"
)

// SegmentClass distinguishes the origin marker, passable-looking
// continuations and terminal segments of an explosion.
type SegmentClass uint8

const (
	SegmentStart SegmentClass = iota
	SegmentMiddle
	SegmentEnd
)

func (c SegmentClass) String() string {
	switch c {
	case SegmentStart:
		return "start"
	case SegmentMiddle:
		return "middle"
	case SegmentEnd:
		return "end"
	default:
		return fmt.Sprintf("SegmentClass(%d)", uint8(c))
	}
}

// Segment is one cell of an active explosion.
type Segment struct {
	ID        ecs.EntityID
	Cell      grid.Cell
	Dir       grid.Dir
	Class     SegmentClass
	Remaining time.Duration
	Origin    ecs.EntityID // source bomb, zero for handler-made blasts
}

// Segments holds at most one segment per cell.
type Segments struct {
	pool   *ecs.EntityPool
	byCell map[grid.Cell]*Segment
}

func newSegments(pool *ecs.EntityPool) *Segments {
	return &Segments{pool: pool, byCell: make(map[grid.Cell]*Segment)}
}

func (s *Segments) At(cell grid.Cell) (*Segment, bool) {
	seg, ok := s.byCell[cell]
	return seg, ok
}

// Place creates a segment at cell, or refreshes the lifetime of the one
// already there. created reports whether a new entity was made. An existing
// segment keeps its class except that an End may be promoted to Middle;
// a segment is never demoted.
func (s *Segments) Place(cell grid.Cell, dir grid.Dir, class SegmentClass, life time.Duration, origin ecs.EntityID) (seg *Segment, created bool) {
	if cur, ok := s.byCell[cell]; ok {
		if cur.Remaining < life {
			cur.Remaining = life
		}
		if cur.Class == SegmentEnd && class == SegmentMiddle {
			cur.Class = SegmentMiddle
		}
		return cur, false
	}
	seg = &Segment{
		ID:        s.pool.Create(),
		Cell:      cell,
		Dir:       dir,
		Class:     class,
		Remaining: life,
		Origin:    origin,
	}
	s.byCell[cell] = seg
	return seg, true
}

// Upgrade promotes an End segment at cell to Middle. It reports whether a
// change happened.
func (s *Segments) Upgrade(cell grid.Cell) bool {
	seg, ok := s.byCell[cell]
	if !ok || seg.Class != SegmentEnd {
		return false
	}
	seg.Class = SegmentMiddle
	return true
}

// Tick ages every segment by dt and removes the expired ones, returned in
// scan order.
func (s *Segments) Tick(dt time.Duration) []*Segment {
	var expired []*Segment
	for cell, seg := range s.byCell {
		seg.Remaining -= dt
		if seg.Remaining <= 0 {
			expired = append(expired, seg)
			delete(s.byCell, cell)
			s.pool.Release(seg.ID)
		}
	}
	sortSegments(expired)
	return expired
}

func (s *Segments) Len() int { return len(s.byCell) }

// All returns current segments in scan order.
func (s *Segments) All() []*Segment {
	out := make([]*Segment, 0, len(s.byCell))
	for _, seg := range s.byCell {
		out = append(out, seg)
	}
	sortSegments(out)
	return out
}

// Clear drops every live segment.
func (s *Segments) Clear() {
	for cell, seg := range s.byCell {
		delete(s.byCell, cell)
		s.pool.Release(seg.ID)
	}
}

func sortSegments(list []*Segment) {
	// insertion sort: lists are short (one explosion's worth)
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].Cell.Less(list[j-1].Cell); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}
