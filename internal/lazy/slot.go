// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package lazy provides a slot for resources that are built on demand.
package lazy

// Slot holds a resource that is either unbuilt or built. The zero Slot is
// unbuilt. Transitions happen only through Set and Take, so a reader never
// observes a partially built value.
type Slot[T any] struct {
	value T
	built bool
}

// Get returns the value and true if the slot is built.
func (s *Slot[T]) Get() (T, bool) {
	return s.value, s.built
}

// Built reports whether the slot holds a value.
func (s *Slot[T]) Built() bool { return s.built }

// Set stores v, marking the slot built.
func (s *Slot[T]) Set(v T) {
	s.value = v
	s.built = true
}

// Take empties the slot and returns the previous value, if any.
func (s *Slot[T]) Take() (T, bool) {
	v, ok := s.value, s.built
	var zero T
	s.value = zero
	s.built = false
	return v, ok
}
