package ecs

import "sort"

// Store is a typed EntityID → *T map. Iteration through Each is ordered by
// a caller-supplied key so that simulation passes over the store are
// deterministic regardless of Go's map ordering.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 64)}
}

func (s *Store[T]) Set(id EntityID, v *T) { s.data[id] = v }

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	v, ok := s.data[id]
	return v, ok
}

func (s *Store[T]) Remove(id EntityID) { delete(s.data, id) }

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.data) }

// Clear drops every entry.
func (s *Store[T]) Clear() {
	for id := range s.data {
		delete(s.data, id)
	}
}

// Sorted returns the stored values ordered by less. Ties fall back to ID.
func (s *Store[T]) Sorted(less func(a, b *T) bool) []*T {
	ids := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.data[ids[i]], s.data[ids[j]]
		if less != nil {
			if less(a, b) {
				return true
			}
			if less(b, a) {
				return false
			}
		}
		return ids[i] < ids[j]
	})
	out := make([]*T, len(ids))
	for i, id := range ids {
		out[i] = s.data[id]
	}
	return out
}

// Each visits values in the order given by less.
func (s *Store[T]) Each(less func(a, b *T) bool, fn func(*T)) {
	for _, v := range s.Sorted(less) {
		fn(v)
	}
}
