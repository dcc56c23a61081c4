package ecs

// EntityID encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. Bombs, actors and explosion segments all draw
// from one pool, so a stale ID held by a scheduled task never aliases a newer
// entity that reused the slot.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool hands out generational IDs. Slot 0 generation 0 is reserved so
// the zero EntityID always means "none".
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	live        int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: []uint32{1}, // slot 0 reserved
		freeList:    make([]uint32, 0, 64),
	}
}

// Create returns a fresh ID, recycling released slots first.
func (p *EntityPool) Create() EntityID {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	p.generations = append(p.generations, 0)
	idx := uint32(len(p.generations) - 1)
	return NewEntityID(idx, 0)
}

// Alive reports whether id still refers to a live entity.
func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return false
	}
	if p.generations[idx] != id.Generation() {
		return false
	}
	for _, free := range p.freeList {
		if free == idx {
			return false
		}
	}
	return true
}

// Release invalidates id. Releasing a stale or unknown ID is a no-op.
func (p *EntityPool) Release(id EntityID) {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return
	}
	if p.generations[idx] != id.Generation() {
		return // already released
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
}

// Live returns the number of IDs handed out and not yet released.
func (p *EntityPool) Live() int { return p.live }
