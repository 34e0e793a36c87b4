// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package primitive

import (
	"errors"
	"fmt"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/pipeline"
)

// ErrInvalidMesh is returned by [Mesh.Validate].
var ErrInvalidMesh = errors.New("primitive: invalid mesh")

// Primitive is one drawing command. The set of implementations is closed.
type Primitive interface {
	isPrimitive()
}

// Quad is a filled rectangle.
type Quad struct {
	Bounds     core.Rectangle
	Background core.Color
	Border     Border
	Shadow     Shadow
}

// Border is the outline of a quad. Radius lists the corner radii clockwise
// from the top-left corner.
type Border struct {
	Color  core.Color
	Width  float32
	Radius [4]float32
}

// Shadow is the drop shadow of a quad.
type Shadow struct {
	Color  core.Color
	Offset core.Vector
	Blur   float32
}

// Alignment positions text inside its bounds along one axis.
type Alignment uint8

// Alignments. Start means left or top.
const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
)

// DefaultLineHeight is the line height used when Text.LineHeight is zero.
const DefaultLineHeight = 1.3

// Text is a block of text laid out inside Bounds.
type Text struct {
	Content string
	Bounds  core.Rectangle
	Color   core.Color

	// Size is the font size in logical units.
	Size float32

	// LineHeight is relative to Size.
	LineHeight float32

	Font       Font
	Horizontal Alignment
	Vertical   Alignment
}

// LineHeightPx returns the line height in logical units.
func (t *Text) LineHeightPx() float32 {
	lh := t.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	return lh * t.Size
}

// SolidVertex is a mesh vertex. Color is straight alpha in sRGB.
type SolidVertex struct {
	Position [2]float32
	Color    [4]float32
}

// Mesh is an indexed triangle list. Positions are relative to the mesh
// origin, which is set by enclosing [Translate] primitives.
type Mesh struct {
	Size     core.Size
	Vertices []SolidVertex
	Indices  []uint32
}

// Validate checks that the mesh forms at least one triangle and every index
// refers to a vertex.
func (m *Mesh) Validate() error {
	if len(m.Indices) < 3 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrInvalidMesh, len(m.Indices))
	}
	n := uint32(len(m.Vertices)) //nolint:gosec // vertex count fits uint32
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidMesh, idx, i, n)
		}
	}
	return nil
}

// FilterMethod selects image sampling.
type FilterMethod uint8

// Filter methods.
const (
	FilterLinear FilterMethod = iota
	FilterNearest
)

// Image draws an image stretched over Bounds.
type Image struct {
	Handle *Handle
	Bounds core.Rectangle
	Filter FilterMethod

	// Tint recolors a vector handle, keeping its coverage. The zero value
	// keeps the document colors. Raster handles ignore it.
	Tint core.Color
}

// Svg draws an SVG document fitted into Bounds. A non-zero Color replaces
// every color of the document.
type Svg struct {
	Handle *Handle
	Bounds core.Rectangle
	Color  core.Color
}

// Custom draws a primitive with its own pipeline inside Bounds.
type Custom struct {
	Bounds    core.Rectangle
	Primitive pipeline.Primitive
}

// Group is an ordered list of primitives.
type Group struct {
	Primitives []Primitive
}

// Clip restricts Content to Bounds.
type Clip struct {
	Bounds  core.Rectangle
	Content Primitive
}

// Translate moves Content by Translation.
type Translate struct {
	Translation core.Vector
	Content     Primitive
}

// Cache wraps content produced by a cached widget subtree.
type Cache struct {
	Content Primitive
}

func (Quad) isPrimitive()      {}
func (Text) isPrimitive()      {}
func (Mesh) isPrimitive()      {}
func (Image) isPrimitive()     {}
func (Svg) isPrimitive()       {}
func (Custom) isPrimitive()    {}
func (Group) isPrimitive()     {}
func (Clip) isPrimitive()      {}
func (Translate) isPrimitive() {}
func (Cache) isPrimitive()     {}
