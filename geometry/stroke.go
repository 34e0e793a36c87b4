// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geometry

import (
	"math"

	"github.com/gogpu/compositor/core"
)

// LineCap is the shape at the ends of open subpaths.
type LineCap uint8

// Line caps.
const (
	CapButt LineCap = iota
	CapSquare
	CapRound
)

// LineJoin is the shape where two segments meet.
type LineJoin uint8

// Line joins.
const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// DefaultMiterLimit is the ratio of miter length to stroke width past which
// a miter join falls back to a bevel.
const DefaultMiterLimit = 4

// LineDash splits a stroke into dashes. Segments alternates dash and gap
// lengths; an odd list is repeated to make it even. Offset shifts the
// pattern along the path.
type LineDash struct {
	Segments []float32
	Offset   float32
}

// Stroke describes how to outline a path. A zero Width strokes one unit
// wide and a zero MiterLimit selects DefaultMiterLimit.
type Stroke struct {
	Color      core.Color
	Width      float32
	Cap        LineCap
	Join       LineJoin
	MiterLimit float32
	Dash       LineDash
}

type vec struct{ x, y float32 }

func direction(a, b core.Point) (vec, float32) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return vec{}, 0
	}
	return vec{dx / l, dy / l}, l
}

func offset(p core.Point, v vec, s float32) core.Point {
	return core.Point{X: p.X + v.x*s, Y: p.Y + v.y*s}
}

// normal is v turned a quarter clockwise on screen.
func (v vec) normal() vec { return vec{-v.y, v.x} }

func (v vec) angle() float64 { return math.Atan2(float64(v.y), float64(v.x)) }

func polar(center core.Point, radius float32, angle float64) core.Point {
	return core.Point{
		X: center.X + radius*float32(math.Cos(angle)),
		Y: center.Y + radius*float32(math.Sin(angle)),
	}
}

// arcSteps returns how many chords approximate an arc within tolerance.
func arcSteps(radius float32, sweep float64, tolerance float32) int {
	step := math.Pi / 4
	if radius > tolerance {
		step = 2 * math.Acos(1-float64(tolerance/radius))
	}
	return min(max(int(math.Ceil(math.Abs(sweep)/step)), 1), 64)
}

// tessellateStroke covers the outline of lines with triangles.
func tessellateStroke(t *tessellation, lines []Polyline, s Stroke, tolerance float32) {
	width := s.Width
	if width <= 0 {
		width = 1
	}
	limit := s.MiterLimit
	if limit <= 0 {
		limit = DefaultMiterLimit
	}
	if len(s.Dash.Segments) > 0 {
		lines = dash(lines, s.Dash)
	}
	st := stroker{t: t, hw: width / 2, cap: s.Cap, join: s.Join, limit: limit, tolerance: tolerance}
	for _, l := range lines {
		st.polyline(l)
	}
}

type stroker struct {
	t         *tessellation
	hw        float32
	cap       LineCap
	join      LineJoin
	limit     float32
	tolerance float32
}

func (s *stroker) polyline(l Polyline) {
	pts := make([]core.Point, 0, len(l.Points))
	for _, p := range l.Points {
		if len(pts) == 0 || pts[len(pts)-1] != p {
			pts = append(pts, p)
		}
	}
	closed := l.Closed && len(pts) > 2
	if closed && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 2 {
		return
	}

	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	dirs := make([]vec, n)
	for i := range n {
		a, b := pts[i], pts[(i+1)%len(pts)]
		d, _ := direction(a, b)
		dirs[i] = d
		nv := d.normal()
		s.t.quad(offset(a, nv, s.hw), offset(b, nv, s.hw), offset(b, nv, -s.hw), offset(a, nv, -s.hw))
	}

	for i := 1; i < n; i++ {
		s.joint(pts[i], dirs[i-1], dirs[i])
	}
	if closed {
		s.joint(pts[0], dirs[n-1], dirs[0])
		return
	}
	s.lineCap(pts[0], vec{-dirs[0].x, -dirs[0].y})
	s.lineCap(pts[len(pts)-1], dirs[n-1])
}

// joint fills the gap on the outer side of the turn from d0 to d1 at p.
func (s *stroker) joint(p core.Point, d0, d1 vec) {
	cross := d0.x*d1.y - d0.y*d1.x
	dot := d0.x*d1.x + d0.y*d1.y
	if cross > -1e-6 && cross < 1e-6 && dot > 0 {
		return
	}
	side := float32(1)
	if cross > 0 {
		side = -1
	}
	n0, n1 := d0.normal(), d1.normal()
	o0, o1 := offset(p, n0, side*s.hw), offset(p, n1, side*s.hw)

	switch s.join {
	case JoinRound:
		sweep := vec{o1.X - p.X, o1.Y - p.Y}.angle() - vec{o0.X - p.X, o0.Y - p.Y}.angle()
		for sweep > math.Pi {
			sweep -= 2 * math.Pi
		}
		for sweep < -math.Pi {
			sweep += 2 * math.Pi
		}
		s.t.fan(p, s.hw, vec{o0.X - p.X, o0.Y - p.Y}.angle(), sweep, s.tolerance)
	case JoinMiter:
		m := vec{n0.x + n1.x, n0.y + n1.y}
		ml := float32(math.Hypot(float64(m.x), float64(m.y)))
		if ml > 1e-6 {
			m = vec{m.x / ml, m.y / ml}
			cosHalf := m.x*n0.x + m.y*n0.y
			if cosHalf > 1e-6 && 1/cosHalf <= s.limit {
				tip := offset(p, m, side*s.hw/cosHalf)
				s.t.quad(p, o0, tip, o1)
				return
			}
		}
		s.t.triangle(p, o0, o1)
	default:
		s.t.triangle(p, o0, o1)
	}
}

// lineCap adds the cap at p for a stroke leaving in direction d.
func (s *stroker) lineCap(p core.Point, d vec) {
	n := d.normal()
	switch s.cap {
	case CapSquare:
		ext := offset(p, d, s.hw)
		s.t.quad(offset(p, n, s.hw), offset(ext, n, s.hw), offset(ext, n, -s.hw), offset(p, n, -s.hw))
	case CapRound:
		s.t.fan(p, s.hw, d.angle()+math.Pi/2, -math.Pi, s.tolerance)
	}
}

// dash cuts lines into open polylines following the pattern. A pattern
// without a positive total length leaves lines unchanged.
func dash(lines []Polyline, d LineDash) []Polyline {
	pattern := d.Segments
	var total float32
	for _, v := range pattern {
		if v < 0 {
			return lines
		}
		total += v
	}
	if total <= 0 {
		return lines
	}
	if len(pattern)%2 == 1 {
		pattern = append(append([]float32(nil), pattern...), pattern...)
		total *= 2
	}

	var out []Polyline
	for _, l := range lines {
		pts := l.Points
		if l.Closed {
			pts = append(append([]core.Point(nil), pts...), pts[0])
		}

		idx, rem, on := dashPhase(pattern, total, d.Offset)
		var cur []core.Point
		if on {
			cur = []core.Point{pts[0]}
		}
		for i := 0; i+1 < len(pts); i++ {
			a, b := pts[i], pts[i+1]
			_, length := direction(a, b)
			var pos float32
			for length-pos > rem {
				pos += rem
				t := pos / length
				p := core.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
				if on {
					out = append(out, Polyline{Points: append(cur, p)})
					cur = nil
				} else {
					cur = []core.Point{p}
				}
				on = !on
				idx = (idx + 1) % len(pattern)
				rem = pattern[idx]
			}
			rem -= length - pos
			if on {
				cur = append(cur, b)
			}
		}
		if on && len(cur) > 1 {
			out = append(out, Polyline{Points: cur})
		}
	}
	return out
}

// dashPhase returns the pattern entry at offset, the length left in it and
// whether it is a dash.
func dashPhase(pattern []float32, total, offset float32) (idx int, rem float32, on bool) {
	off := float32(math.Mod(float64(offset), float64(total)))
	if off < 0 {
		off += total
	}
	for off >= pattern[idx] {
		off -= pattern[idx]
		idx = (idx + 1) % len(pattern)
	}
	return idx, pattern[idx] - off, idx%2 == 0
}
