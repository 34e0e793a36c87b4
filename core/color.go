// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"image/color"
	"math"
)

// Color is a straight-alpha color with components in [0, 1], expressed in
// the sRGB color space.
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black       = Color{R: 0, G: 0, B: 0, A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Transparent = Color{}
)

// RGB returns an opaque color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGB8 returns an opaque color from 8-bit components.
func RGB8(r, g, b uint8) Color {
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// FromColor converts a standard library color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// Hex parses "RGB", "RRGGBB" or "RRGGBBAA" with an optional leading '#'.
// The boolean is false for malformed input.
func Hex(s string) (Color, bool) {
	if s != "" && s[0] == '#' {
		s = s[1:]
	}
	var v [4]uint8
	v[3] = 255
	switch len(s) {
	case 3:
		for i := range 3 {
			d, ok := hexDigit(s[i])
			if !ok {
				return Color{}, false
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(s)/2; i++ {
			hi, ok1 := hexDigit(s[2*i])
			lo, ok2 := hexDigit(s[2*i+1])
			if !ok1 || !ok2 {
				return Color{}, false
			}
			v[i] = hi<<4 | lo
		}
	default:
		return Color{}, false
	}
	return Color{
		R: float32(v[0]) / 255,
		G: float32(v[1]) / 255,
		B: float32(v[2]) / 255,
		A: float32(v[3]) / 255,
	}, true
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Premultiply returns the color with RGB multiplied by alpha.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Linear returns the color with RGB converted to linear light. Alpha is
// unchanged.
func (c Color) Linear() Color {
	return Color{R: srgbToLinear(c.R), G: srgbToLinear(c.G), B: srgbToLinear(c.B), A: c.A}
}

// Pack returns the components as uploaded to shaders. Render targets with an
// sRGB format encode on write, so their inputs must be linear.
func (c Color) Pack(srgbTarget bool) [4]float32 {
	if srgbTarget {
		c = c.Linear()
	}
	return [4]float32{c.R, c.G, c.B, c.A}
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}
