// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geometry draws vector shapes into meshes.
//
// A [Frame] records fills and strokes of [Path] values under a transform
// stack and tessellates them into a single [primitive.Mesh]:
//
//	frame := geometry.NewFrame(core.Size{Width: 200, Height: 200})
//	frame.Fill(geometry.Circle(frame.Center(), 50), geometry.Fill{Color: core.White})
//	frame.Stroke(geometry.Line(core.Point{}, core.Point{X: 200, Y: 200}),
//		geometry.Stroke{Color: core.Black, Width: 2})
//	prim := frame.IntoPrimitive()
//
// Fills are cut into trapezoids with the nonzero or even-odd rule, so
// self-intersecting paths and holes are handled. Strokes are tessellated
// segment by segment with the requested joins, caps and dashes.
package geometry
