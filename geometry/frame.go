// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geometry

import (
	"math"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/primitive"
)

// DefaultTolerance is the largest distance, in logical units, between a
// curve and the segments that approximate it.
const DefaultTolerance = 0.1

// Fill describes how to paint the inside of a path.
type Fill struct {
	Color core.Color
	Rule  FillRule
}

// affine maps (x, y) to (a*x + c*y + e, b*x + d*y + f).
type affine struct {
	a, b, c, d, e, f float32
}

var identity = affine{a: 1, d: 1}

func (m affine) apply(p core.Point) core.Point {
	return core.Point{X: m.a*p.X + m.c*p.Y + m.e, Y: m.b*p.X + m.d*p.Y + m.f}
}

// scale returns the geometric mean of the axis scales.
func (m affine) scale() float32 {
	return float32(math.Sqrt(math.Abs(float64(m.a*m.d - m.b*m.c))))
}

// Frame records shapes and text into a primitive of a fixed size.
//
// Transforms apply to everything drawn after them and nest with
// PushTransform and PopTransform. A Frame is not safe for concurrent use.
type Frame struct {
	size      core.Size
	transform affine
	stack     []affine
	tolerance float32
	vertices  []primitive.SolidVertex
	indices   []uint32
	clips     []primitive.Primitive
	text      []primitive.Text
	scratch   tessellation
}

// NewFrame returns an empty frame of the given size.
func NewFrame(size core.Size) *Frame {
	return &Frame{size: size, transform: identity, tolerance: DefaultTolerance}
}

// Size returns the size of the frame.
func (f *Frame) Size() core.Size { return f.size }

// Width returns the width of the frame.
func (f *Frame) Width() float32 { return f.size.Width }

// Height returns the height of the frame.
func (f *Frame) Height() float32 { return f.size.Height }

// Center returns the center point of the frame.
func (f *Frame) Center() core.Point {
	return core.Point{X: f.size.Width / 2, Y: f.size.Height / 2}
}

// SetTolerance sets the curve flattening tolerance in logical units.
// Values that are not positive restore DefaultTolerance.
func (f *Frame) SetTolerance(tolerance float32) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	f.tolerance = tolerance
}

// pathTolerance is the flattening tolerance in path units under the
// current transform.
func (f *Frame) pathTolerance() float32 {
	s := f.transform.scale()
	if s < 1e-6 {
		return f.tolerance
	}
	return f.tolerance / s
}

// Fill paints the inside of p.
func (f *Frame) Fill(p *Path, fill Fill) {
	f.scratch.reset()
	tessellateFill(&f.scratch, p.Flatten(f.pathTolerance()), fill.Rule)
	f.commit(fill.Color)
}

// FillRectangle paints an axis-aligned rectangle.
func (f *Frame) FillRectangle(topLeft core.Point, size core.Size, fill Fill) {
	f.scratch.reset()
	f.scratch.quad(
		topLeft,
		core.Point{X: topLeft.X + size.Width, Y: topLeft.Y},
		core.Point{X: topLeft.X + size.Width, Y: topLeft.Y + size.Height},
		core.Point{X: topLeft.X, Y: topLeft.Y + size.Height},
	)
	f.commit(fill.Color)
}

// Stroke outlines p.
func (f *Frame) Stroke(p *Path, s Stroke) {
	f.scratch.reset()
	tessellateStroke(&f.scratch, p.Flatten(f.pathTolerance()), s, f.pathTolerance())
	f.commit(s.Color)
}

// FillText draws t with its bounds moved by the current transform. Text
// follows translation and uniform scale; rotation is ignored.
func (f *Frame) FillText(t primitive.Text) {
	pos := f.transform.apply(t.Bounds.Position())
	s := f.transform.scale()
	t.Bounds = core.Rectangle{X: pos.X, Y: pos.Y, Width: t.Bounds.Width * s, Height: t.Bounds.Height * s}
	t.Size *= s
	f.text = append(f.text, t)
}

// commit moves the scratch tessellation into the mesh, transformed and
// painted with c.
func (f *Frame) commit(c core.Color) {
	if len(f.scratch.indices) == 0 {
		return
	}
	base := uint32(len(f.vertices)) //nolint:gosec // vertex count fits uint32
	color := [4]float32{c.R, c.G, c.B, c.A}
	for _, p := range f.scratch.points {
		q := f.transform.apply(p)
		f.vertices = append(f.vertices, primitive.SolidVertex{Position: [2]float32{q.X, q.Y}, Color: color})
	}
	for _, i := range f.scratch.indices {
		f.indices = append(f.indices, base+i)
	}
}

// PushTransform saves the current transform.
func (f *Frame) PushTransform() {
	f.stack = append(f.stack, f.transform)
}

// PopTransform restores the transform saved by the matching
// PushTransform. It does nothing when the stack is empty.
func (f *Frame) PopTransform() {
	if len(f.stack) == 0 {
		return
	}
	f.transform = f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
}

// WithSave runs fn and restores the transform afterwards.
func (f *Frame) WithSave(fn func(f *Frame)) {
	f.PushTransform()
	defer f.PopTransform()
	fn(f)
}

// Translate moves the origin of later drawing by v.
func (f *Frame) Translate(v core.Vector) {
	m := &f.transform
	m.e += m.a*v.X + m.c*v.Y
	m.f += m.b*v.X + m.d*v.Y
}

// Rotate turns later drawing clockwise by angle radians around the origin.
func (f *Frame) Rotate(angle float32) {
	sin, cos := math.Sincos(float64(angle))
	s, c := float32(sin), float32(cos)
	m := f.transform
	f.transform.a = m.a*c + m.c*s
	f.transform.b = m.b*c + m.d*s
	f.transform.c = m.c*c - m.a*s
	f.transform.d = m.d*c - m.b*s
}

// Scale scales later drawing uniformly.
func (f *Frame) Scale(s float32) {
	f.ScaleNonuniform(s, s)
}

// ScaleNonuniform scales later drawing by sx horizontally and sy
// vertically.
func (f *Frame) ScaleNonuniform(sx, sy float32) {
	m := &f.transform
	m.a *= sx
	m.b *= sx
	m.c *= sy
	m.d *= sy
}

// Transform applies the affine matrix [a c e; b d f] to later drawing,
// before the current transform.
func (f *Frame) Transform(a, b, c, d, e, ff float32) {
	m := f.transform
	f.transform = affine{
		a: m.a*a + m.c*b,
		b: m.b*a + m.d*b,
		c: m.a*c + m.c*d,
		d: m.b*c + m.d*d,
		e: m.a*e + m.c*ff + m.e,
		f: m.b*e + m.d*ff + m.f,
	}
}

// WithClip runs fn on a new frame the size of region and places its
// content at the region, clipped to it. Only the translation of the
// current transform applies to the region.
func (f *Frame) WithClip(region core.Rectangle, fn func(f *Frame)) {
	sub := NewFrame(region.Size())
	sub.tolerance = f.tolerance
	fn(sub)

	at := f.transform.apply(region.Position())
	f.clips = append(f.clips, primitive.Translate{
		Translation: core.Vector{X: at.X, Y: at.Y},
		Content: primitive.Clip{
			Bounds:  core.RectangleWithSize(region.Size()),
			Content: sub.IntoPrimitive(),
		},
	})
}

// Mesh returns the tessellated shapes. ok is false when nothing was
// filled or stroked.
func (f *Frame) Mesh() (m primitive.Mesh, ok bool) {
	if len(f.indices) == 0 {
		return primitive.Mesh{}, false
	}
	return primitive.Mesh{Size: f.size, Vertices: f.vertices, Indices: f.indices}, true
}

// IntoPrimitive returns everything drawn so far: the shapes first, then
// clipped regions, then text. The frame must not be used afterwards.
func (f *Frame) IntoPrimitive() primitive.Primitive {
	var g primitive.Group
	if m, ok := f.Mesh(); ok {
		g.Primitives = append(g.Primitives, m)
	}
	g.Primitives = append(g.Primitives, f.clips...)
	for _, t := range f.text {
		g.Primitives = append(g.Primitives, t)
	}
	return g
}

// Clear removes everything drawn and resets the transform.
func (f *Frame) Clear() {
	f.transform = identity
	f.stack = f.stack[:0]
	f.vertices = nil
	f.indices = nil
	f.clips = nil
	f.text = nil
}
