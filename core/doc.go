// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package core provides the value types shared by every stage of the
// compositor: geometry, colors, transformations and the per-frame viewport.
//
// All types are plain values. Nothing in this package touches the GPU, so
// layer generation and the CPU side of every pipeline can be tested without
// a device.
//
// Coordinates come in two spaces:
//
//   - logical units, produced by the widget layer and used by primitives
//   - physical pixels, obtained by multiplying with [Viewport.ScaleFactor]
//
// [Rectangle.Snap] converts a scaled logical rectangle into the integer
// physical-pixel rectangle used for scissoring and tiny-layer culling.
package core
