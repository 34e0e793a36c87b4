// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import "testing"

func TestViewport_Sizes(t *testing.T) {
	vp := NewViewport(SizeU{Width: 400, Height: 200}, 2)

	if got := vp.LogicalSize(); got != (Size{Width: 200, Height: 100}) {
		t.Errorf("LogicalSize() = %+v", got)
	}
	if vp.PhysicalWidth() != 400 || vp.PhysicalHeight() != 200 {
		t.Errorf("PhysicalSize() = %+v", vp.PhysicalSize())
	}
	if vp.ScaleFactor() != 2 {
		t.Errorf("ScaleFactor() = %v", vp.ScaleFactor())
	}
}

func TestViewport_InvalidScale(t *testing.T) {
	vp := NewViewport(SizeU{Width: 10, Height: 10}, 0)
	if vp.ScaleFactor() != 1 {
		t.Errorf("ScaleFactor() = %v, want 1", vp.ScaleFactor())
	}
}

func TestViewport_Projection(t *testing.T) {
	vp := NewViewport(SizeU{Width: 200, Height: 100}, 1)
	proj := vp.Projection()

	tests := []struct {
		in   Point
		want Point
	}{
		{Point{X: 0, Y: 0}, Point{X: -1, Y: 1}},
		{Point{X: 200, Y: 100}, Point{X: 1, Y: -1}},
		{Point{X: 100, Y: 50}, Point{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		got := proj.Apply(tt.in)
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("Projection().Apply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestViewport_ScaledProjection(t *testing.T) {
	vp := NewViewport(SizeU{Width: 200, Height: 100}, 2)
	got := vp.ScaledProjection().Apply(Point{X: 100, Y: 50})
	if !near(got.X, 1) || !near(got.Y, -1) {
		t.Errorf("logical bottom-right maps to %v, want (1, -1)", got)
	}
}

func TestTransformation_Multiply(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2))
	got := m.Apply(Point{X: 1, Y: 1})
	if got != (Point{X: 12, Y: 22}) {
		t.Errorf("Apply() = %v, want {12 22}", got)
	}
	if Identity().Multiply(m) != m {
		t.Error("identity must be neutral")
	}
}
