// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

// Transformation is a 4x4 matrix stored in column-major order, the layout
// WGSL expects for a mat4x4<f32> uniform.
type Transformation [16]float32

// Identity returns the identity transformation.
func Identity() Transformation {
	return Transformation{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Orthographic maps pixel coordinates with the origin at the top-left corner
// to clip space.
func Orthographic(width, height uint32) Transformation {
	w := float32(width)
	h := float32(height)
	if w == 0 || h == 0 {
		return Identity()
	}
	return Transformation{
		2 / w, 0, 0, 0,
		0, -2 / h, 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}
}

// Translate returns a translation by (x, y).
func Translate(x, y float32) Transformation {
	t := Identity()
	t[12] = x
	t[13] = y
	return t
}

// Scale returns a uniform scale in x and y.
func Scale(s float32) Transformation {
	t := Identity()
	t[0] = s
	t[5] = s
	return t
}

// Multiply returns t * o, which applies o first.
func (t Transformation) Multiply(o Transformation) Transformation {
	var r Transformation
	for col := range 4 {
		for row := range 4 {
			var sum float32
			for k := range 4 {
				sum += t[k*4+row] * o[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// Apply transforms a point, treating it as (x, y, 0, 1).
func (t Transformation) Apply(p Point) Point {
	return Point{
		X: t[0]*p.X + t[4]*p.Y + t[12],
		Y: t[1]*p.X + t[5]*p.Y + t[13],
	}
}

// ScaleFactor returns the x scale component.
func (t Transformation) ScaleFactor() float32 {
	return t[0]
}
