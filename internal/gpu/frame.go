package gpu

import (
	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
)

// Frame carries the state shared by every preparer during one frame.
type Frame struct {
	// Encoder receives the staging copies.
	Encoder gpucore.CommandEncoder

	// Belt stages every upload of the frame.
	Belt *StagingBelt

	// Viewport is the viewport being rendered.
	Viewport core.Viewport

	// SRGB is true when the target format is sRGB-encoded, in which case
	// colors are uploaded in linear space.
	SRGB bool
}

// scale returns the viewport scale factor as float32.
func (f *Frame) scale() float32 {
	return float32(f.Viewport.ScaleFactor())
}

// Target is the render target of a frame.
type Target struct {
	View gpucore.TextureViewID
	Size core.SizeU
}
