// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

// Viewport describes the render target of one frame.
//
// A Viewport is immutable; every preparer reads the same value during a
// frame.
type Viewport struct {
	physical   SizeU
	logical    Size
	scale      float64
	projection Transformation
}

// NewViewport returns a viewport for a target of the given physical size.
// A non-positive scale factor is treated as 1.
func NewViewport(physical SizeU, scale float64) Viewport {
	if !(scale > 0) {
		scale = 1
	}
	return Viewport{
		physical: physical,
		logical: Size{
			Width:  float32(float64(physical.Width) / scale),
			Height: float32(float64(physical.Height) / scale),
		},
		scale:      scale,
		projection: Orthographic(physical.Width, physical.Height),
	}
}

// PhysicalSize returns the target size in pixels.
func (v Viewport) PhysicalSize() SizeU { return v.physical }

// PhysicalWidth returns the target width in pixels.
func (v Viewport) PhysicalWidth() uint32 { return v.physical.Width }

// PhysicalHeight returns the target height in pixels.
func (v Viewport) PhysicalHeight() uint32 { return v.physical.Height }

// LogicalSize returns the target size in logical units.
func (v Viewport) LogicalSize() Size { return v.logical }

// ScaleFactor returns the number of physical pixels per logical unit.
func (v Viewport) ScaleFactor() float64 { return v.scale }

// Projection maps physical pixels to clip space.
func (v Viewport) Projection() Transformation { return v.projection }

// ScaledProjection maps logical units to clip space.
func (v Viewport) ScaledProjection() Transformation {
	return v.projection.Multiply(Scale(float32(v.scale)))
}
