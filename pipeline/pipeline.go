// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/gpucore"
)

// Primitive is a drawable with its own GPU pipeline.
type Primitive interface {
	// Prepare uploads whatever the primitive needs for this frame. bounds is
	// the primitive's area in logical units; vp is the frame viewport.
	Prepare(dev gpucore.Device, format gputypes.TextureFormat, storage *Storage, bounds core.Rectangle, vp core.Viewport) error

	// Render records the primitive's draws into enc. No render pass is open
	// when Render is called; the primitive opens and ends its own passes on
	// target and should load, not clear, the existing contents. clip is the
	// visible area in physical pixels.
	Render(storage *Storage, enc gpucore.CommandEncoder, target gpucore.TextureViewID, targetSize core.SizeU, clip core.RectU)
}
