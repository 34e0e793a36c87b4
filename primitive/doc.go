// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package primitive defines the drawing commands the compositor consumes.
//
// [Primitive] is a closed set of variants. Drawables:
//
//   - [Quad]: a rectangle with background, border and shadow
//   - [Text]: a run of text
//   - [Mesh]: an indexed triangle mesh with per-vertex colors
//   - [Image]: a raster image
//   - [Custom]: a primitive with its own pipeline
//
// Structure:
//
//   - [Group]: an ordered list of primitives
//   - [Clip]: content restricted to a rectangle, drawn in its own layer
//   - [Translate]: content moved by a vector
//   - [Cache]: content produced by a cached widget subtree
//
// Primitives are values owned by the caller and read for the duration of a
// single frame.
package primitive
