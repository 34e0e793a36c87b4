// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import "reflect"

// Storage holds the persistent state of custom pipelines, one value per Go
// type. It lives as long as the compositor that owns it.
//
// Storage is not safe for concurrent use; frames are prepared and rendered
// from a single goroutine.
type Storage struct {
	entries map[reflect.Type]any
}

// NewStorage returns an empty storage.
func NewStorage() *Storage {
	return &Storage{entries: make(map[reflect.Type]any)}
}

// Len returns the number of stored values.
func (s *Storage) Len() int {
	return len(s.entries)
}

// Clear drops every stored value. Values implementing Destroy() are
// destroyed first.
func (s *Storage) Clear() {
	for k, v := range s.entries {
		if d, ok := v.(interface{ Destroy() }); ok {
			d.Destroy()
		}
		delete(s.entries, k)
	}
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Store sets the value for type T, replacing any previous one.
func Store[T any](s *Storage, v T) {
	s.entries[keyOf[T]()] = v
}

// Get returns the value stored for type T.
func Get[T any](s *Storage) (T, bool) {
	v, ok := s.entries[keyOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Has reports whether a value of type T is stored.
func Has[T any](s *Storage) bool {
	_, ok := s.entries[keyOf[T]()]
	return ok
}

// Delete removes the value stored for type T.
func Delete[T any](s *Storage) {
	delete(s.entries, keyOf[T]())
}
