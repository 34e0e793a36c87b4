// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geometry

import "github.com/gogpu/compositor/core"

// tessellation is an indexed triangle list in path coordinates.
type tessellation struct {
	points  []core.Point
	indices []uint32
}

func (t *tessellation) reset() {
	t.points = t.points[:0]
	t.indices = t.indices[:0]
}

func (t *tessellation) base() uint32 {
	return uint32(len(t.points)) //nolint:gosec // vertex count fits uint32
}

func (t *tessellation) triangle(a, b, c core.Point) {
	i := t.base()
	t.points = append(t.points, a, b, c)
	t.indices = append(t.indices, i, i+1, i+2)
}

// quad adds the quadrilateral a b c d, given in winding order.
func (t *tessellation) quad(a, b, c, d core.Point) {
	i := t.base()
	t.points = append(t.points, a, b, c, d)
	t.indices = append(t.indices, i, i+1, i+2, i, i+2, i+3)
}

// fan adds triangles around center covering the arc of the given radius
// from angle start through sweep radians.
func (t *tessellation) fan(center core.Point, radius float32, start, sweep float64, tolerance float32) {
	n := arcSteps(radius, sweep, tolerance)
	i := t.base()
	t.points = append(t.points, center)
	for k := 0; k <= n; k++ {
		t.points = append(t.points, polar(center, radius, start+sweep*float64(k)/float64(n)))
	}
	for k := range uint32(n) { //nolint:gosec // n is small
		t.indices = append(t.indices, i, i+1+k, i+2+k)
	}
}
