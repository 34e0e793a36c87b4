// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layer partitions a frame's primitives into ordered layers.
//
// A layer is a clip scope: every [primitive.Clip] opens a new layer whose
// bounds are the intersection of the enclosing layer and the clip
// rectangle. Within a layer, primitives are bucketed by kind and keep their
// submission order. Layers are returned back to front; the compositor draws
// them in exactly that order and never sorts them.
package layer
