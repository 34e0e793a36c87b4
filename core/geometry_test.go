// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import "testing"

func TestRectangle_Intersection(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Rectangle
		want   Rectangle
		wantOK bool
	}{
		{
			name:   "overlap",
			a:      Rectangle{X: 0, Y: 0, Width: 100, Height: 100},
			b:      Rectangle{X: 50, Y: 25, Width: 100, Height: 100},
			want:   Rectangle{X: 50, Y: 25, Width: 50, Height: 75},
			wantOK: true,
		},
		{
			name:   "contained",
			a:      Rectangle{X: 0, Y: 0, Width: 100, Height: 100},
			b:      Rectangle{X: 10, Y: 10, Width: 10, Height: 10},
			want:   Rectangle{X: 10, Y: 10, Width: 10, Height: 10},
			wantOK: true,
		},
		{
			name: "touching edges",
			a:    Rectangle{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rectangle{X: 10, Y: 0, Width: 10, Height: 10},
		},
		{
			name: "disjoint",
			a:    Rectangle{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rectangle{X: 50, Y: 50, Width: 10, Height: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Intersection(tt.b)
			if ok != tt.wantOK {
				t.Fatalf("Intersection() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Intersection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectangle_Union(t *testing.T) {
	a := Rectangle{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rectangle{X: 20, Y: 5, Width: 10, Height: 10}
	want := Rectangle{X: 0, Y: 0, Width: 30, Height: 15}
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
}

func TestRectangle_Snap(t *testing.T) {
	tests := []struct {
		name    string
		r       Rectangle
		want    RectU
		visible bool
	}{
		{"integral", Rectangle{X: 0, Y: 0, Width: 100, Height: 100}, RectU{Width: 100, Height: 100}, true},
		{"fractional origin", Rectangle{X: 1.7, Y: 2.2, Width: 10.4, Height: 9.6}, RectU{X: 1, Y: 2, Width: 10, Height: 10}, true},
		{"sub-pixel width", Rectangle{X: 5, Y: 5, Width: 0.4, Height: 20}, RectU{X: 5, Y: 5, Width: 0, Height: 20}, false},
		{"negative origin", Rectangle{X: -3, Y: -3, Width: 4, Height: 4}, RectU{Width: 4, Height: 4}, true},
		{"empty", Rectangle{}, RectU{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Snap()
			if got != tt.want {
				t.Errorf("Snap() = %+v, want %+v", got, tt.want)
			}
			if got.IsVisible() != tt.visible {
				t.Errorf("IsVisible() = %v, want %v", got.IsVisible(), tt.visible)
			}
		})
	}
}

func TestRectU_ClampTo(t *testing.T) {
	size := SizeU{Width: 100, Height: 50}
	tests := []struct {
		name string
		r    RectU
		want RectU
	}{
		{"inside", RectU{X: 10, Y: 10, Width: 20, Height: 20}, RectU{X: 10, Y: 10, Width: 20, Height: 20}},
		{"overflow", RectU{X: 90, Y: 40, Width: 20, Height: 20}, RectU{X: 90, Y: 40, Width: 10, Height: 10}},
		{"outside", RectU{X: 200, Y: 0, Width: 20, Height: 20}, RectU{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.ClampTo(size); got != tt.want {
				t.Errorf("ClampTo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectangle_Contains(t *testing.T) {
	r := Rectangle{X: 0, Y: 0, Width: 10, Height: 10}
	if !r.Contains(Point{X: 0, Y: 0}) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(Point{X: 10, Y: 5}) {
		t.Error("right edge should be outside")
	}
}
