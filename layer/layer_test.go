// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"testing"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
	"github.com/gogpu/compositor/pipeline"
	"github.com/gogpu/compositor/primitive"
	"github.com/gogpu/gputypes"
)

func viewport() core.Viewport {
	return core.NewViewport(core.SizeU{Width: 200, Height: 200}, 1)
}

func quad(x, y, w, h float32, id uint8) primitive.Quad {
	return primitive.Quad{
		Bounds:     core.Rectangle{X: x, Y: y, Width: w, Height: h},
		Background: core.RGB8(id, 0, 0),
	}
}

func triangle(size float32) primitive.Mesh {
	return primitive.Mesh{
		Size:     core.Size{Width: size, Height: size},
		Vertices: []primitive.SolidVertex{{}, {Position: [2]float32{size, 0}}, {Position: [2]float32{0, size}}},
		Indices:  []uint32{0, 1, 2},
	}
}

type nopCustom struct{}

func (nopCustom) Prepare(gpucore.Device, gputypes.TextureFormat, *pipeline.Storage, core.Rectangle, core.Viewport) error {
	return nil
}

func (nopCustom) Render(*pipeline.Storage, gpucore.CommandEncoder, gpucore.TextureViewID, core.SizeU, core.RectU) {
}

func TestGenerate_Empty(t *testing.T) {
	if got := Generate(nil, viewport()); len(got) != 0 {
		t.Fatalf("Generate(nil) produced %d layers, want 0", len(got))
	}
	got := Generate([]primitive.Primitive{primitive.Group{}}, viewport())
	if len(got) != 0 {
		t.Fatalf("Generate(empty group) produced %d layers, want 0", len(got))
	}
}

func TestGenerate_PreservesOrder(t *testing.T) {
	prims := []primitive.Primitive{
		quad(0, 0, 10, 10, 1),
		primitive.Group{Primitives: []primitive.Primitive{
			quad(5, 5, 10, 10, 2),
			primitive.Cache{Content: quad(6, 6, 10, 10, 3)},
		}},
		quad(50, 50, 10, 10, 4),
	}

	layers := Generate(prims, viewport())
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	quads := layers[0].Quads
	if len(quads) != 4 {
		t.Fatalf("got %d quads, want 4", len(quads))
	}
	for i, q := range quads {
		want := core.RGB8(uint8(i+1), 0, 0)
		if q.Background != want {
			t.Errorf("quad %d background = %+v, want %+v", i, q.Background, want)
		}
	}
}

func TestGenerate_Translate(t *testing.T) {
	prims := []primitive.Primitive{
		primitive.Translate{
			Translation: core.Vector{X: 10, Y: 20},
			Content: primitive.Translate{
				Translation: core.Vector{X: 1, Y: 2},
				Content: primitive.Group{Primitives: []primitive.Primitive{
					quad(0, 0, 5, 5, 1),
					triangle(50),
				}},
			},
		},
	}

	layers := Generate(prims, viewport())
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	if got := layers[0].Quads[0].Bounds; got != (core.Rectangle{X: 11, Y: 22, Width: 5, Height: 5}) {
		t.Errorf("quad bounds = %+v", got)
	}
	m := layers[0].Meshes[0]
	if m.Origin != (core.Vector{X: 11, Y: 22}) {
		t.Errorf("mesh origin = %+v", m.Origin)
	}
	if m.ClipBounds != (core.Rectangle{X: 11, Y: 22, Width: 50, Height: 50}) {
		t.Errorf("mesh clip = %+v", m.ClipBounds)
	}
}

func TestGenerate_Svg(t *testing.T) {
	icon := primitive.NewSvgHandleFromMemory([]byte(`<svg viewBox="0 0 1 1"/>`))
	tint := core.Color{R: 1, A: 1}
	prims := []primitive.Primitive{
		primitive.Translate{
			Translation: core.Vector{X: 3, Y: 4},
			Content: primitive.Svg{
				Handle: icon,
				Bounds: core.Rectangle{X: 1, Y: 1, Width: 16, Height: 16},
				Color:  tint,
			},
		},
	}

	layers := Generate(prims, viewport())
	if len(layers) != 1 || len(layers[0].Images) != 1 {
		t.Fatalf("layers = %d, want one layer with one image", len(layers))
	}
	img := layers[0].Images[0]
	if img.Handle != icon || img.Tint != tint || img.Filter != primitive.FilterLinear {
		t.Errorf("image = %+v, want the svg handle, tint and linear filtering", img)
	}
	if img.Bounds != (core.Rectangle{X: 4, Y: 5, Width: 16, Height: 16}) {
		t.Errorf("image bounds = %+v", img.Bounds)
	}
}

func TestGenerate_Clip(t *testing.T) {
	prims := []primitive.Primitive{
		quad(0, 0, 10, 10, 1),
		primitive.Clip{
			Bounds: core.Rectangle{X: 150, Y: 150, Width: 100, Height: 100},
			Content: primitive.Group{Primitives: []primitive.Primitive{
				quad(160, 160, 10, 10, 2),
				primitive.Clip{
					Bounds:  core.Rectangle{X: 190, Y: 190, Width: 5, Height: 5},
					Content: quad(190, 190, 5, 5, 3),
				},
			}},
		},
		// Entirely outside the viewport: dropped with its content.
		primitive.Clip{
			Bounds:  core.Rectangle{X: 300, Y: 300, Width: 10, Height: 10},
			Content: quad(300, 300, 10, 10, 9),
		},
	}

	layers := Generate(prims, viewport())
	if len(layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(layers))
	}

	wantBounds := []core.Rectangle{
		{X: 0, Y: 0, Width: 200, Height: 200},
		{X: 150, Y: 150, Width: 50, Height: 50},
		{X: 190, Y: 190, Width: 5, Height: 5},
	}
	for i, l := range layers {
		if l.Bounds != wantBounds[i] {
			t.Errorf("layer %d bounds = %+v, want %+v", i, l.Bounds, wantBounds[i])
		}
		if len(l.Quads) != 1 || l.Quads[0].Background != core.RGB8(uint8(i+1), 0, 0) {
			t.Errorf("layer %d quads = %+v", i, l.Quads)
		}
	}
}

func TestGenerate_CullsMeshAndCustom(t *testing.T) {
	prims := []primitive.Primitive{
		primitive.Translate{Translation: core.Vector{X: 500, Y: 0}, Content: triangle(10)},
		primitive.Custom{Bounds: core.Rectangle{X: -50, Y: -50, Width: 10, Height: 10}, Primitive: nopCustom{}},
		primitive.Custom{Bounds: core.Rectangle{X: 190, Y: 190, Width: 20, Height: 20}, Primitive: nopCustom{}},
	}

	layers := Generate(prims, viewport())
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	if len(layers[0].Meshes) != 0 {
		t.Errorf("off-screen mesh kept")
	}
	if len(layers[0].Pipelines) != 1 {
		t.Fatalf("got %d custom invocations, want 1", len(layers[0].Pipelines))
	}
	c := layers[0].Pipelines[0]
	if c.Viewport != (core.Rectangle{X: 190, Y: 190, Width: 10, Height: 10}) {
		t.Errorf("custom viewport = %+v", c.Viewport)
	}
	if c.Bounds.Width != 20 {
		t.Errorf("custom bounds must stay unclipped, got %+v", c.Bounds)
	}
}

func TestLayer_PhysicalBounds(t *testing.T) {
	tests := []struct {
		name    string
		bounds  core.Rectangle
		scale   float64
		visible bool
	}{
		{"full", core.Rectangle{Width: 100, Height: 100}, 1, true},
		{"hairline", core.Rectangle{Width: 100, Height: 0.3}, 1, false},
		{"hairline scaled up", core.Rectangle{Width: 100, Height: 0.3}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Layer{Bounds: tt.bounds}
			if got := l.PhysicalBounds(tt.scale).IsVisible(); got != tt.visible {
				t.Errorf("visible = %v, want %v", got, tt.visible)
			}
		})
	}
}

func TestOverlay(t *testing.T) {
	vp := core.NewViewport(core.SizeU{Width: 400, Height: 300}, 2)
	l := Overlay([]string{"fps: 60", "layers: 3"}, vp)

	if l.Bounds != (core.Rectangle{Width: 200, Height: 150}) {
		t.Errorf("overlay bounds = %+v", l.Bounds)
	}
	if len(l.Text) != 4 {
		t.Fatalf("got %d text items, want 4", len(l.Text))
	}

	tests := []struct {
		idx     int
		content string
		x, y    float32
		color   core.Color
	}{
		{0, "fps: 60", 11, 11, core.Black},
		{1, "fps: 60", 10, 10, overlayColor},
		{2, "layers: 3", 11, 36, core.Black},
		{3, "layers: 3", 10, 35, overlayColor},
	}
	for _, tt := range tests {
		got := l.Text[tt.idx]
		if got.Content != tt.content || got.Bounds.X != tt.x || got.Bounds.Y != tt.y || got.Color != tt.color {
			t.Errorf("text %d = %q at (%v, %v) %+v", tt.idx, got.Content, got.Bounds.X, got.Bounds.Y, got.Color)
		}
		if got.Size != 20 || got.Font != primitive.MonospaceFont {
			t.Errorf("text %d size/font = %v/%v", tt.idx, got.Size, got.Font)
		}
	}
}
