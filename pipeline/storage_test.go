// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import "testing"

type first struct{ n int }
type second struct{ n int }

type destroyable struct{ destroyed *bool }

func (d destroyable) Destroy() { *d.destroyed = true }

func TestStorage_TypeKeyed(t *testing.T) {
	s := NewStorage()

	if Has[*first](s) {
		t.Fatal("empty storage reports a value")
	}

	Store(s, &first{n: 1})
	Store(s, &second{n: 2})

	a, ok := Get[*first](s)
	if !ok || a.n != 1 {
		t.Errorf("Get[*first] = %v, %v", a, ok)
	}
	b, ok := Get[*second](s)
	if !ok || b.n != 2 {
		t.Errorf("Get[*second] = %v, %v", b, ok)
	}

	// Pointer and value types are distinct keys.
	if Has[first](s) {
		t.Error("value type must not alias the pointer type")
	}

	Store(s, &first{n: 3})
	if a, _ := Get[*first](s); a.n != 3 {
		t.Errorf("Store did not replace: %d", a.n)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStorage_Persistent(t *testing.T) {
	s := NewStorage()
	Store(s, &first{})

	// Mutations through the stored pointer are visible on later lookups.
	for range 3 {
		v, _ := Get[*first](s)
		v.n++
	}
	if v, _ := Get[*first](s); v.n != 3 {
		t.Errorf("n = %d, want 3", v.n)
	}
}

func TestStorage_DeleteAndClear(t *testing.T) {
	s := NewStorage()
	Store(s, &first{})
	Delete[*first](s)
	if Has[*first](s) {
		t.Error("Delete left the value")
	}

	var destroyed bool
	Store(s, destroyable{destroyed: &destroyed})
	s.Clear()
	if !destroyed {
		t.Error("Clear did not destroy the value")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear", s.Len())
	}
}
