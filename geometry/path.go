// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geometry

import (
	"math"

	"github.com/gogpu/compositor/core"
)

type verb uint8

const (
	verbMove verb = iota
	verbLine
	verbQuad
	verbCubic
	verbClose
)

// Path is a sequence of subpaths made of lines and Bézier curves.
// The zero value is an empty path ready to use.
type Path struct {
	verbs  []verb
	points []core.Point
	start  core.Point
	open   bool
}

// NewPath returns a path built by fn.
func NewPath(fn func(p *Path)) *Path {
	p := &Path{}
	fn(p)
	return p
}

// Line returns a path with a single segment.
func Line(from, to core.Point) *Path {
	p := &Path{}
	p.MoveTo(from)
	p.LineTo(to)
	return p
}

// Rectangle returns a closed rectangular path.
func Rectangle(topLeft core.Point, size core.Size) *Path {
	p := &Path{}
	p.Rectangle(topLeft, size)
	return p
}

// Circle returns a closed circular path.
func Circle(center core.Point, radius float32) *Path {
	p := &Path{}
	p.Circle(center, radius)
	return p
}

// MoveTo starts a new subpath at pt.
func (p *Path) MoveTo(pt core.Point) {
	p.verbs = append(p.verbs, verbMove)
	p.points = append(p.points, pt)
	p.start = pt
	p.open = true
}

// ensureStart begins a subpath when none is open: at the start of the
// last closed subpath, or at pt on an empty path.
func (p *Path) ensureStart(pt core.Point) {
	switch {
	case p.open:
	case len(p.verbs) > 0:
		p.MoveTo(p.start)
	default:
		p.MoveTo(pt)
	}
}

// LineTo adds a segment to pt.
func (p *Path) LineTo(pt core.Point) {
	p.ensureStart(pt)
	p.verbs = append(p.verbs, verbLine)
	p.points = append(p.points, pt)
}

// QuadraticCurveTo adds a quadratic Bézier curve to pt.
func (p *Path) QuadraticCurveTo(control, pt core.Point) {
	p.ensureStart(control)
	p.verbs = append(p.verbs, verbQuad)
	p.points = append(p.points, control, pt)
}

// BezierCurveTo adds a cubic Bézier curve to pt.
func (p *Path) BezierCurveTo(control1, control2, pt core.Point) {
	p.ensureStart(control1)
	p.verbs = append(p.verbs, verbCubic)
	p.points = append(p.points, control1, control2, pt)
}

// Close joins the current subpath back to its start.
func (p *Path) Close() {
	if !p.open {
		return
	}
	p.verbs = append(p.verbs, verbClose)
	p.open = false
}

// Rectangle adds a closed rectangle.
func (p *Path) Rectangle(topLeft core.Point, size core.Size) {
	p.MoveTo(topLeft)
	p.LineTo(core.Point{X: topLeft.X + size.Width, Y: topLeft.Y})
	p.LineTo(core.Point{X: topLeft.X + size.Width, Y: topLeft.Y + size.Height})
	p.LineTo(core.Point{X: topLeft.X, Y: topLeft.Y + size.Height})
	p.Close()
}

// RoundedRectangle adds a closed rectangle with corners of the given
// radius, clamped to half the shorter side.
func (p *Path) RoundedRectangle(topLeft core.Point, size core.Size, radius float32) {
	r := min(radius, size.Width/2, size.Height/2)
	if r <= 0 {
		p.Rectangle(topLeft, size)
		return
	}
	x, y, w, h := topLeft.X, topLeft.Y, size.Width, size.Height
	p.MoveTo(core.Point{X: x + r, Y: y})
	p.LineTo(core.Point{X: x + w - r, Y: y})
	p.arc(core.Point{X: x + w - r, Y: y + r}, r, r, -math.Pi/2, 0)
	p.LineTo(core.Point{X: x + w, Y: y + h - r})
	p.arc(core.Point{X: x + w - r, Y: y + h - r}, r, r, 0, math.Pi/2)
	p.LineTo(core.Point{X: x + r, Y: y + h})
	p.arc(core.Point{X: x + r, Y: y + h - r}, r, r, math.Pi/2, math.Pi)
	p.LineTo(core.Point{X: x, Y: y + r})
	p.arc(core.Point{X: x + r, Y: y + r}, r, r, math.Pi, 3*math.Pi/2)
	p.Close()
}

// Circle adds a closed circle.
func (p *Path) Circle(center core.Point, radius float32) {
	p.Ellipse(center, radius, radius)
}

// Ellipse adds a closed axis-aligned ellipse.
func (p *Path) Ellipse(center core.Point, rx, ry float32) {
	p.MoveTo(core.Point{X: center.X + rx, Y: center.Y})
	p.arc(center, rx, ry, 0, 2*math.Pi)
	p.Close()
}

// Arc adds a circular arc around center from angle start to end, in
// radians clockwise from the positive x axis. A line joins the current
// point to the start of the arc.
func (p *Path) Arc(center core.Point, radius float32, start, end float64) {
	from := core.Point{
		X: center.X + radius*float32(math.Cos(start)),
		Y: center.Y + radius*float32(math.Sin(start)),
	}
	if p.open {
		p.LineTo(from)
	} else {
		p.MoveTo(from)
	}
	p.arc(center, radius, radius, start, end)
}

// arc appends cubic segments of at most a quarter turn each.
func (p *Path) arc(center core.Point, rx, ry float32, start, end float64) {
	sweep := end - start
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	cx, cy := float64(center.X), float64(center.Y)
	fx, fy := float64(rx), float64(ry)
	for i := range n {
		a0 := start + float64(i)*step
		a1 := a0 + step
		cos0, sin0 := math.Cos(a0), math.Sin(a0)
		cos1, sin1 := math.Cos(a1), math.Sin(a1)
		p.BezierCurveTo(
			core.Point{X: float32(cx + fx*(cos0-k*sin0)), Y: float32(cy + fy*(sin0+k*cos0))},
			core.Point{X: float32(cx + fx*(cos1+k*sin1)), Y: float32(cy + fy*(sin1-k*cos1))},
			core.Point{X: float32(cx + fx*cos1), Y: float32(cy + fy*sin1)},
		)
	}
}

// IsEmpty reports whether the path has no segments.
func (p *Path) IsEmpty() bool {
	for _, v := range p.verbs {
		if v != verbMove {
			return false
		}
	}
	return true
}

// Polyline is a flattened subpath.
type Polyline struct {
	Points []core.Point
	Closed bool
}

// Flatten approximates every curve with line segments no further than
// tolerance from the curve. Subpaths with a single point are dropped.
func (p *Path) Flatten(tolerance float32) []Polyline {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var (
		out []Polyline
		cur Polyline
		i   int
	)
	flush := func() {
		if len(cur.Points) > 1 {
			out = append(out, cur)
		}
		cur = Polyline{}
	}
	last := func() core.Point { return cur.Points[len(cur.Points)-1] }

	for _, v := range p.verbs {
		switch v {
		case verbMove:
			flush()
			cur.Points = append(cur.Points, p.points[i])
			i++
		case verbLine:
			cur.Points = append(cur.Points, p.points[i])
			i++
		case verbQuad:
			cur.Points = flattenQuad(cur.Points, last(), p.points[i], p.points[i+1], tolerance)
			i += 2
		case verbCubic:
			cur.Points = flattenCubic(cur.Points, last(), p.points[i], p.points[i+1], p.points[i+2], tolerance)
			i += 3
		case verbClose:
			if n := len(cur.Points); n > 1 && cur.Points[0] == cur.Points[n-1] {
				cur.Points = cur.Points[:n-1]
			}
			cur.Closed = true
			start := cur.Points[0]
			flush()
			cur.Points = append(cur.Points, start)
		}
	}
	flush()
	return out
}

// segments returns how many lines approximate a curve whose control
// polygon deviates dev from its chord.
func segments(dev, tolerance float32) int {
	n := int(math.Ceil(math.Sqrt(float64(dev / tolerance))))
	return min(max(n, 1), 256)
}

func flattenQuad(dst []core.Point, p0, p1, p2 core.Point, tolerance float32) []core.Point {
	dx := p0.X - 2*p1.X + p2.X
	dy := p0.Y - 2*p1.Y + p2.Y
	n := segments(float32(math.Hypot(float64(dx), float64(dy)))/4, tolerance)
	for i := 1; i <= n; i++ {
		t := float32(i) / float32(n)
		u := 1 - t
		dst = append(dst, core.Point{
			X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
			Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
		})
	}
	return dst
}

func flattenCubic(dst []core.Point, p0, p1, p2, p3 core.Point, tolerance float32) []core.Point {
	d1 := math.Hypot(float64(p0.X-2*p1.X+p2.X), float64(p0.Y-2*p1.Y+p2.Y))
	d2 := math.Hypot(float64(p1.X-2*p2.X+p3.X), float64(p1.Y-2*p2.Y+p3.Y))
	n := segments(float32(3*max(d1, d2)/4), tolerance)
	for i := 1; i <= n; i++ {
		t := float32(i) / float32(n)
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		dst = append(dst, core.Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
	return dst
}
