// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/pipeline"
	"github.com/gogpu/compositor/primitive"
)

// Layer is a bucket of drawables sharing one clip rectangle.
//
// All bounds are in logical units with translations already applied.
type Layer struct {
	// Bounds is the clip rectangle of the layer.
	Bounds core.Rectangle

	Quads     []primitive.Quad
	Meshes    []Mesh
	Text      []primitive.Text
	Images    []primitive.Image
	Pipelines []Custom
}

// Mesh is a mesh placed in a layer.
type Mesh struct {
	// Origin is the accumulated translation of the mesh.
	Origin core.Vector

	// ClipBounds is the visible part of the mesh area.
	ClipBounds core.Rectangle

	Mesh *primitive.Mesh
}

// Custom is a custom pipeline invocation placed in a layer.
type Custom struct {
	// Bounds is the translated area of the primitive.
	Bounds core.Rectangle

	// Viewport is the visible part of Bounds.
	Viewport core.Rectangle

	Primitive pipeline.Primitive
}

// IsEmpty reports whether the layer holds no drawables.
func (l *Layer) IsEmpty() bool {
	return len(l.Quads) == 0 && len(l.Meshes) == 0 && len(l.Text) == 0 &&
		len(l.Images) == 0 && len(l.Pipelines) == 0
}

// PhysicalBounds returns the layer bounds scaled by the viewport and snapped
// to whole pixels.
func (l *Layer) PhysicalBounds(scale float64) core.RectU {
	return l.Bounds.Scale(float32(scale)).Snap()
}

// Generate builds the layers for a frame. Layers without any drawable are
// omitted, so an empty primitive list yields no layers.
func Generate(primitives []primitive.Primitive, vp core.Viewport) []*Layer {
	b := builder{
		layers: []*Layer{{Bounds: core.RectangleWithSize(vp.LogicalSize())}},
	}
	for _, p := range primitives {
		b.process(p, 0, core.Vector{})
	}

	out := b.layers[:0]
	for _, l := range b.layers {
		if !l.IsEmpty() {
			out = append(out, l)
		}
	}
	return out
}

type builder struct {
	layers []*Layer
}

func (b *builder) process(p primitive.Primitive, current int, translation core.Vector) {
	layer := b.layers[current]

	switch p := p.(type) {
	case primitive.Quad:
		p.Bounds = p.Bounds.Translate(translation)
		layer.Quads = append(layer.Quads, p)

	case primitive.Text:
		p.Bounds = p.Bounds.Translate(translation)
		layer.Text = append(layer.Text, p)

	case primitive.Image:
		p.Bounds = p.Bounds.Translate(translation)
		layer.Images = append(layer.Images, p)

	case primitive.Svg:
		layer.Images = append(layer.Images, primitive.Image{
			Handle: p.Handle,
			Bounds: p.Bounds.Translate(translation),
			Tint:   p.Color,
		})

	case primitive.Mesh:
		bounds := core.NewRectangle(core.Point{X: translation.X, Y: translation.Y}, p.Size)
		if clip, ok := layer.Bounds.Intersection(bounds); ok {
			layer.Meshes = append(layer.Meshes, Mesh{
				Origin:     translation,
				ClipBounds: clip,
				Mesh:       &p,
			})
		}

	case primitive.Custom:
		bounds := p.Bounds.Translate(translation)
		if clip, ok := layer.Bounds.Intersection(bounds); ok {
			layer.Pipelines = append(layer.Pipelines, Custom{
				Bounds:    bounds,
				Viewport:  clip,
				Primitive: p.Primitive,
			})
		}

	case primitive.Group:
		for _, child := range p.Primitives {
			b.process(child, current, translation)
		}

	case primitive.Clip:
		bounds := p.Bounds.Translate(translation)
		if clip, ok := layer.Bounds.Intersection(bounds); ok {
			b.layers = append(b.layers, &Layer{Bounds: clip})
			b.process(p.Content, len(b.layers)-1, translation)
		}

	case primitive.Translate:
		b.process(p.Content, current, translation.Add(p.Translation))

	case primitive.Cache:
		b.process(p.Content, current, translation)
	}
}
