package geometry

import (
	"math"
	"testing"

	"github.com/gogpu/compositor/core"
)

func TestPath_Flatten(t *testing.T) {
	lines := Rectangle(core.Point{X: 1, Y: 2}, core.Size{Width: 3, Height: 4}).Flatten(0)
	if len(lines) != 1 {
		t.Fatalf("subpaths = %d, want 1", len(lines))
	}
	want := []core.Point{{X: 1, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 6}, {X: 1, Y: 6}}
	if got := lines[0]; !got.Closed || len(got.Points) != len(want) {
		t.Fatalf("rectangle = %+v, want 4 closed points", got)
	}
	for i, p := range want {
		if lines[0].Points[i] != p {
			t.Errorf("point %d = %v, want %v", i, lines[0].Points[i], p)
		}
	}
}

func TestPath_FlattenTolerance(t *testing.T) {
	for _, tolerance := range []float32{1, 0.1, 0.01} {
		lines := Circle(core.Point{X: 10, Y: 10}, 100).Flatten(tolerance)
		if len(lines) != 1 || !lines[0].Closed {
			t.Fatalf("tolerance %v: subpaths = %+v", tolerance, lines)
		}
		pts := lines[0].Points
		for i, a := range pts {
			b := pts[(i+1)%len(pts)]
			// Distance from the circle center to the chord midpoint.
			mx, my := (a.X+b.X)/2-10, (a.Y+b.Y)/2-10
			if dev := 100 - math.Hypot(float64(mx), float64(my)); dev > float64(tolerance)*1.5+1e-3 {
				t.Errorf("tolerance %v: chord %d deviates %v", tolerance, i, dev)
				break
			}
		}
	}
}

func TestPath_Subpaths(t *testing.T) {
	p := &Path{}
	if !p.IsEmpty() {
		t.Error("zero path is not empty")
	}
	p.MoveTo(core.Point{X: 5, Y: 5})
	if !p.IsEmpty() {
		t.Error("path with only a move is not empty")
	}

	// A line after Close starts at the closed subpath's start.
	p.LineTo(core.Point{X: 10, Y: 5})
	p.LineTo(core.Point{X: 10, Y: 10})
	p.Close()
	p.LineTo(core.Point{X: 0, Y: 0})
	p.MoveTo(core.Point{X: 50, Y: 50})
	p.QuadraticCurveTo(core.Point{X: 60, Y: 40}, core.Point{X: 70, Y: 50})

	lines := p.Flatten(0.1)
	if len(lines) != 3 {
		t.Fatalf("subpaths = %d, want 3", len(lines))
	}
	if got := lines[1].Points[0]; got != (core.Point{X: 5, Y: 5}) {
		t.Errorf("subpath after Close starts at %v, want (5, 5)", got)
	}
	if lines[1].Closed || lines[2].Closed {
		t.Error("open subpaths reported closed")
	}
	if last := lines[2].Points[len(lines[2].Points)-1]; last != (core.Point{X: 70, Y: 50}) {
		t.Errorf("curve ends at %v, want (70, 50)", last)
	}

	arc := &Path{}
	arc.Arc(core.Point{}, 10, 0, math.Pi)
	lines = arc.Flatten(0.1)
	end := lines[0].Points[len(lines[0].Points)-1]
	if math.Abs(float64(end.X+10)) > 1e-3 || math.Abs(float64(end.Y)) > 1e-3 {
		t.Errorf("half turn arc ends at %v, want (-10, 0)", end)
	}
}
