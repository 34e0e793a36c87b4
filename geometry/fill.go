// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geometry

import (
	"cmp"
	"slices"

	"github.com/gogpu/compositor/core"
)

// FillRule decides which regions of an overlapping path are inside.
type FillRule uint8

// Fill rules.
const (
	// NonZero fills regions whose winding number is not zero.
	NonZero FillRule = iota

	// EvenOdd fills regions crossed by an odd number of edges.
	EvenOdd
)

func (r FillRule) inside(winding int) bool {
	if r == EvenOdd {
		return winding%2 != 0
	}
	return winding != 0
}

// edge is a polygon edge with y0 < y1. winding is +1 for edges that run
// downwards in the source polygon.
type edge struct {
	x0, y0, x1, y1 float64
	winding        int
}

func (e edge) xAt(y float64) float64 {
	return e.x0 + (y-e.y0)*(e.x1-e.x0)/(e.y1-e.y0)
}

// crossing returns the y of the point where a and b cross inside both.
func crossing(a, b edge) (float64, bool) {
	dx1, dy1 := a.x1-a.x0, a.y1-a.y0
	dx2, dy2 := b.x1-b.x0, b.y1-b.y0
	den := dx1*dy2 - dy1*dx2
	if den > -1e-12 && den < 1e-12 {
		return 0, false
	}
	t := ((b.x0-a.x0)*dy2 - (b.y0-a.y0)*dx2) / den
	u := ((b.x0-a.x0)*dy1 - (b.y0-a.y0)*dx1) / den
	if t <= 0 || t >= 1 || u <= 0 || u >= 1 {
		return 0, false
	}
	return a.y0 + t*dy1, true
}

type bandEdge struct {
	top, bottom float64
	winding     int
}

// tessellateFill covers the inside of lines with trapezoids. Open
// polylines are closed implicitly.
//
// The plane is cut into horizontal bands at every vertex and edge
// crossing. No two edges cross inside a band, so the edges keep their
// order from top to bottom and the inside spans are trapezoids.
func tessellateFill(t *tessellation, lines []Polyline, rule FillRule) {
	var (
		edges []edge
		ys    []float64
	)
	for _, l := range lines {
		n := len(l.Points)
		if n < 3 {
			continue
		}
		for i := range n {
			a, b := l.Points[i], l.Points[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			e := edge{x0: float64(a.X), y0: float64(a.Y), x1: float64(b.X), y1: float64(b.Y), winding: 1}
			if e.y0 > e.y1 {
				e = edge{x0: e.x1, y0: e.y1, x1: e.x0, y1: e.y0, winding: -1}
			}
			edges = append(edges, e)
			ys = append(ys, e.y0, e.y1)
		}
	}
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			if y, ok := crossing(edges[i], edges[j]); ok {
				ys = append(ys, y)
			}
		}
	}
	slices.Sort(ys)
	ys = slices.Compact(ys)

	var band []bandEdge
	for k := 0; k+1 < len(ys); k++ {
		top, bottom := ys[k], ys[k+1]
		if bottom-top < 1e-9 {
			continue
		}
		band = band[:0]
		for _, e := range edges {
			if e.y0 <= top && e.y1 >= bottom {
				band = append(band, bandEdge{top: e.xAt(top), bottom: e.xAt(bottom), winding: e.winding})
			}
		}
		slices.SortFunc(band, func(a, b bandEdge) int {
			return cmp.Compare(a.top+a.bottom, b.top+b.bottom)
		})

		winding, left := 0, 0
		for i, e := range band {
			was := rule.inside(winding)
			winding += e.winding
			now := rule.inside(winding)
			switch {
			case !was && now:
				left = i
			case was && !now:
				l := band[left]
				t.quad(
					point(l.top, top), point(e.top, top),
					point(e.bottom, bottom), point(l.bottom, bottom),
				)
			}
		}
	}
}

func point(x, y float64) core.Point {
	return core.Point{X: float32(x), Y: float32(y)}
}
