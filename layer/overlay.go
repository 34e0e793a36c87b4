// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"github.com/gogpu/compositor/core"
	"github.com/gogpu/compositor/primitive"
)

// Overlay text metrics in logical units.
const (
	overlayTextSize   = 20
	overlayLineHeight = 25
	overlayMargin     = 10
)

var overlayColor = core.Color{R: 0.9, G: 0.9, B: 0.9, A: 1}

// Overlay builds a layer of diagnostic text covering the whole viewport.
// Each line is drawn in light grey over a black shadow offset by one unit.
func Overlay(lines []string, vp core.Viewport) *Layer {
	logical := vp.LogicalSize()
	l := &Layer{Bounds: core.RectangleWithSize(logical)}

	for i, line := range lines {
		y := float32(overlayMargin + overlayLineHeight*i)
		text := primitive.Text{
			Content: line,
			Bounds: core.Rectangle{
				X:      overlayMargin,
				Y:      y,
				Width:  logical.Width,
				Height: logical.Height,
			},
			Color: overlayColor,
			Size:  overlayTextSize,
			Font:  primitive.MonospaceFont,
		}

		shadow := text
		shadow.Bounds = text.Bounds.Translate(core.Vector{X: 1, Y: 1})
		shadow.Color = core.Black

		l.Text = append(l.Text, shadow, text)
	}
	return l
}
