// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import "math"

// Point is a position in 2D space.
type Point struct {
	X, Y float32
}

// Add returns p translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Vector is a displacement in 2D space.
type Vector struct {
	X, Y float32
}

// Add returns the sum of two vectors.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Size is a width and height in logical units.
type Size struct {
	Width, Height float32
}

// Infinite is a size that never constrains layout.
var Infinite = Size{Width: float32(math.Inf(1)), Height: float32(math.Inf(1))}

// SizeU is a width and height in physical pixels.
type SizeU struct {
	Width, Height uint32
}

// Rectangle is an axis-aligned rectangle in logical units.
type Rectangle struct {
	X, Y          float32
	Width, Height float32
}

// RectangleWithSize returns a rectangle at the origin with the given size.
func RectangleWithSize(s Size) Rectangle {
	return Rectangle{Width: s.Width, Height: s.Height}
}

// NewRectangle returns a rectangle with top-left corner p and size s.
func NewRectangle(p Point, s Size) Rectangle {
	return Rectangle{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Position returns the top-left corner.
func (r Rectangle) Position() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the width and height of r.
func (r Rectangle) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Translate returns r moved by v.
func (r Rectangle) Translate(v Vector) Rectangle {
	r.X += v.X
	r.Y += v.Y
	return r
}

// Scale returns r with every component multiplied by s.
func (r Rectangle) Scale(s float32) Rectangle {
	return Rectangle{X: r.X * s, Y: r.Y * s, Width: r.Width * s, Height: r.Height * s}
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rectangle) Contains(p Point) bool {
	return r.X <= p.X && p.X < r.X+r.Width && r.Y <= p.Y && p.Y < r.Y+r.Height
}

// IsEmpty reports whether r covers no area.
func (r Rectangle) IsEmpty() bool {
	return !(r.Width > 0) || !(r.Height > 0)
}

// Intersection returns the overlapping area of r and o. The boolean is false
// when the rectangles do not overlap.
func (r Rectangle) Intersection(o Rectangle) (Rectangle, bool) {
	x := max(r.X, o.X)
	y := max(r.Y, o.Y)
	right := min(r.X+r.Width, o.X+o.Width)
	bottom := min(r.Y+r.Height, o.Y+o.Height)

	w := right - x
	h := bottom - y
	if w > 0 && h > 0 {
		return Rectangle{X: x, Y: y, Width: w, Height: h}, true
	}
	return Rectangle{}, false
}

// Union returns the smallest rectangle containing both r and o.
func (r Rectangle) Union(o Rectangle) Rectangle {
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	right := max(r.X+r.Width, o.X+o.Width)
	bottom := max(r.Y+r.Height, o.Y+o.Height)
	return Rectangle{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Snap converts r into integer pixel bounds. The origin is floored and the
// size rounded, so a layer whose scaled size is below half a pixel snaps to
// zero and is culled. Negative components clamp to zero.
func (r Rectangle) Snap() RectU {
	x := math.Floor(float64(r.X))
	y := math.Floor(float64(r.Y))
	w := math.Round(float64(r.Width))
	h := math.Round(float64(r.Height))
	return RectU{
		X:      clampU32(x),
		Y:      clampU32(y),
		Width:  clampU32(w),
		Height: clampU32(h),
	}
}

// RectU is a rectangle in physical pixels.
type RectU struct {
	X, Y          uint32
	Width, Height uint32
}

// IsVisible reports whether the rectangle covers at least one whole pixel.
func (r RectU) IsVisible() bool {
	return r.Width >= 1 && r.Height >= 1
}

// ClampTo restricts r to the target size. Scissor rectangles must not
// exceed the render target.
func (r RectU) ClampTo(s SizeU) RectU {
	if r.X >= s.Width || r.Y >= s.Height {
		return RectU{}
	}
	r.Width = min(r.Width, s.Width-r.X)
	r.Height = min(r.Height, s.Height-r.Y)
	return r
}

func clampU32(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
